package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"posturemon/host/mcu"
	"posturemon/host/monitor"
	"posturemon/host/serial"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// Shell is the interactive console around one device connection
type Shell struct {
	shell   *ishell.Shell
	dev     *mcu.MCU
	mon     *monitor.Monitor
	log     io.Writer
	timeout time.Duration
}

// NewShell builds the shell; log, if non-nil, receives streamed lines
func NewShell(log io.Writer) *Shell {
	s := &Shell{
		shell:   ishell.New(),
		timeout: mcu.DefaultTimeout,
	}
	s.log = log
	s.shell.Set(shellKey, s)
	s.shell.SetPrompt(unconnectedPrompt)

	for _, cmd := range []*ishell.Cmd{
		&connectCmd, &disconnectCmd, &sendCmd, &monitorCmd, &stopCmd, &statusCmd,
	} {
		s.shell.AddCmd(cmd)
	}
	// Anything else is a device command; Args holds the whole line here
	s.shell.NotFound(mustBeConnected(func(c *ishell.Context) {
		sendLine(c, strings.Join(c.Args, " "))
	}))
	return s
}

func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := shellFrom(c)
		if s.dev == nil || !s.dev.IsConnected() {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Connect opens device, replacing any current connection
func (s *Shell) Connect(device string) error {
	dev := mcu.NewMCU()
	cfg := serial.DefaultConfig(device)
	cfg.Baud = *baud
	if err := dev.ConnectWithConfig(cfg); err != nil {
		return err
	}
	s.Disconnect()
	s.dev = dev
	s.shell.SetPrompt(fmt.Sprintf("%s > ", device))
	glog.Infof("connected to %s", device)
	return nil
}

// Disconnect closes the current connection, if any
func (s *Shell) Disconnect() {
	if s.dev == nil {
		return
	}
	if err := s.dev.Close(); err != nil {
		glog.Warningf("close: %v", err)
	}
	s.dev = nil
	s.shell.SetPrompt(unconnectedPrompt)
}

// Close releases the connection
func (s *Shell) Close() {
	s.Disconnect()
}

// Run processes args as one command when given, otherwise starts the
// interactive loop
func (s *Shell) Run(evalOnly bool, args ...string) error {
	if len(args) > 0 {
		return s.shell.Process(args...)
	}
	if evalOnly {
		return fmt.Errorf("command expected")
	}
	s.shell.Println("Posture monitor host console. Type 'help' for shell commands;")
	s.shell.Println("anything else is sent to the device.")
	s.shell.Run()
	return nil
}

func sendLine(c *ishell.Context, line string) {
	s := shellFrom(c)
	if s.dev.Streaming() {
		c.Err(fmt.Errorf("device is streaming; use 'stop' first"))
		return
	}
	lines, err := s.dev.Command(line, s.timeout)
	for _, l := range lines {
		c.Println(l)
	}
	if err != nil {
		c.Err(err)
	}
}

// contextWriter prints through the shell so frames do not garble the prompt
type contextWriter struct {
	c *ishell.Context
}

func (w contextWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}

var (
	connectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "DEVICE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: connect DEVICE"))
				return
			}
			if err := shellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	disconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the serial port",
		Func: func(c *ishell.Context) {
			shellFrom(c).Disconnect()
		},
	}

	sendCmd = ishell.Cmd{
		Name: "send",
		Help: "LINE - send a console line to the device",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("usage: send LINE"))
				return
			}
			sendLine(c, strings.Join(c.Args, " "))
		}),
	}

	monitorCmd = ishell.Cmd{
		Name:    "monitor",
		Aliases: []string{"m"},
		Help:    "start telemetry and print frames until 'stop'",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			s.mon = monitor.New(contextWriter{c}, s.log)
			if err := s.dev.StartStream(s.mon.Handle, s.timeout); err != nil {
				c.Err(err)
			}
		}),
	}

	stopCmd = ishell.Cmd{
		Name: "stop",
		Help: "end telemetry (device needs stream_escape enabled)",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			if err := s.dev.StopStream(s.timeout); err != nil {
				c.Err(err)
				return
			}
			if s.mon != nil {
				c.Println(s.mon.Stats().String())
			}
		}),
	}

	statusCmd = ishell.Cmd{
		Name: "status",
		Help: "show device.status as a table",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			status, err := s.dev.Status(s.timeout)
			if err != nil {
				c.Err(err)
				return
			}
			mcu.PrintStatus(contextWriter{c}, status)
		}),
	}
)
