// Command posture-host talks to a posture monitor over a serial port. By
// default it opens an interactive shell; with -monitor it only follows the
// device output, optionally logging it to a file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"posturemon/host/monitor"
	"posturemon/host/serial"
)

var (
	device      = flag.String("device", "/dev/ttyACM0", "Serial device")
	baud        = flag.Int("baud", 115200, "Baud rate")
	logPath     = flag.String("log", "", "Optional file receiving every device line")
	monitorOnly = flag.Bool("monitor", false, "Follow device output without a shell")
	evalOnly    = flag.Bool("e", false, "Run the command given as arguments and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	logFile, err := openLog(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if *monitorOnly {
		if err := runMonitor(logFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var logW io.Writer
	if logFile != nil {
		logW = logFile
	}
	s := NewShell(logW)
	defer s.Close()

	if err := s.Connect(*device); err != nil {
		glog.Warningf("connect %s: %v", *device, err)
		fmt.Fprintf(os.Stderr, "Not connected: %v (use 'connect DEVICE')\n", err)
	}
	if err := s.Run(*evalOnly, flag.Args()...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openLog(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	return f, nil
}

// runMonitor prints device output until the port fails or the user quits
func runMonitor(logFile *os.File) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.ReadTimeout = 0 // block; a timeout would end the scan

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Fprintf(os.Stderr, "Connected to %s at %d baud\n", *device, *baud)

	var mon *monitor.Monitor
	if logFile != nil {
		fmt.Fprintf(os.Stderr, "Logging to %s\n", logFile.Name())
		mon = monitor.New(os.Stdout, logFile)
	} else {
		mon = monitor.New(os.Stdout, nil)
	}

	err = mon.Run(port)
	fmt.Fprintf(os.Stderr, "Monitor stopped: %s\n", mon.Stats())
	return err
}
