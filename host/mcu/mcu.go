package mcu

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"posturemon/host/serial"
	"posturemon/protocol"
)

var (
	// ErrNotConnected is returned by operations on a closed client
	ErrNotConnected = errors.New("not connected to device")

	// ErrTimeout is returned when the device does not prompt in time
	ErrTimeout = errors.New("timed out waiting for prompt")

	// ErrDevice wraps an "ERROR: ..." response
	ErrDevice = errors.New("device error")
)

// DefaultTimeout bounds a single command round trip
const DefaultTimeout = 2 * time.Second

const (
	streamStartNotice = "[Switching to streaming mode...]"
	streamStopNotice  = "[Switching to CLI mode...]"
)

// event is one unit of device output: a complete line or a bare prompt
type event struct {
	line   string
	prompt bool
}

// session is one attachment to a port. Each reader goroutine owns its
// session's channels, so a replaced reader can never feed the next one.
type session struct {
	port   serial.Port
	events chan event
	done   chan struct{}
	closed bool // guarded by MCU.mu
}

func newSession(port serial.Port) *session {
	return &session{
		port:   port,
		events: make(chan event, 256),
		done:   make(chan struct{}),
	}
}

// detachTimeout bounds how long Attach waits for a previous reader to exit
const detachTimeout = time.Second

// MCU is a client for the posture monitor's line console
type MCU struct {
	// cmdMu serialises request/response exchanges
	cmdMu sync.Mutex

	mu        sync.Mutex
	sess      *session
	connected bool
	streaming bool
	onStream  func(string)
	readErr   error
}

// NewMCU creates a new client (not yet connected)
func NewMCU() *MCU {
	return &MCU{}
}

// Connect opens device with the default serial settings
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("mcu: flush %s: %v", cfg.Device, err)
	}

	m.Attach(port)

	// Give the device time to finish booting if the open reset it
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Attach starts talking over an already open port. A previous port is
// closed and its reader is given time to exit first.
func (m *MCU) Attach(port serial.Port) {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	if err := m.Close(); err != nil {
		glog.Warningf("mcu: %v", err)
	}
	m.mu.Lock()
	old := m.sess
	m.mu.Unlock()
	if old != nil {
		select {
		case <-old.done:
		case <-time.After(detachTimeout):
			glog.Warningf("mcu: previous reader did not exit")
		}
	}

	s := newSession(port)
	m.mu.Lock()
	m.sess = s
	m.connected = true
	m.streaming = false
	m.readErr = nil
	m.mu.Unlock()

	go m.readLoop(s)
}

// Close closes the connection to the device
func (m *MCU) Close() error {
	m.mu.Lock()
	s := m.sess
	m.connected = false
	if s == nil || s.closed {
		m.mu.Unlock()
		return nil
	}
	s.closed = true
	m.mu.Unlock()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close port: %w", err)
	}
	return nil
}

// IsConnected returns whether the device is connected
func (m *MCU) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Streaming reports whether the device is currently sending telemetry
func (m *MCU) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// Err returns the error that stopped the reader, if any
func (m *MCU) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readErr
}

// current returns the live session, or nil when disconnected
func (m *MCU) current() *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	return m.sess
}

// readLoop splits device output into lines. A prompt is recognised as soon
// as it is the only thing on the current line, since the device never
// terminates it.
func (m *MCU) readLoop(s *session) {
	defer close(s.done)

	var line []byte
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		for _, b := range buf[:n] {
			switch {
			case b == '\n':
				m.handleLine(s, strings.TrimRight(string(line), "\r"))
				line = line[:0]
			default:
				line = append(line, b)
				if string(line) == protocol.Prompt {
					s.emit(event{prompt: true})
					line = line[:0]
				}
			}
		}
		if err != nil {
			if serial.IsTimeout(err) {
				continue
			}
			m.mu.Lock()
			if m.sess == s {
				m.readErr = err
				m.connected = false
			}
			m.mu.Unlock()
			return
		}
	}
}

func (m *MCU) handleLine(s *session, line string) {
	glog.V(2).Infof("mcu: <- %q", line)

	m.mu.Lock()
	if m.sess != s {
		m.mu.Unlock()
		return
	}
	streaming := m.streaming
	handler := m.onStream
	switch line {
	case streamStartNotice:
		m.streaming = true
	case streamStopNotice:
		m.streaming = false
		streaming = false
	}
	m.mu.Unlock()

	if streaming {
		if handler != nil {
			handler(line)
		}
		return
	}
	s.emit(event{line: line})
}

// emit hands an event to the waiting command without ever blocking the
// reader; unclaimed output beyond the queue is dropped
func (s *session) emit(ev event) {
	select {
	case s.events <- ev:
	default:
		glog.V(1).Infof("mcu: dropped unclaimed output %q", ev.line)
	}
}

// drain discards output nobody asked for, such as a boot banner
func (s *session) drain() {
	for {
		select {
		case ev := <-s.events:
			glog.V(2).Infof("mcu: discarding %q", ev.line)
		default:
			return
		}
	}
}

func (s *session) write(p []byte) error {
	if _, err := s.port.Write(p); err != nil {
		return fmt.Errorf("failed to write to device: %w", err)
	}
	return nil
}

// Command sends one console line and collects the response lines up to the
// next prompt, without the echoed command. An "ERROR: ..." response is
// returned as an error wrapping ErrDevice along with the lines.
func (m *MCU) Command(line string, timeout time.Duration) ([]string, error) {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	s := m.current()
	if s == nil {
		return nil, ErrNotConnected
	}
	s.drain()
	if err := s.write([]byte(line + "\r")); err != nil {
		return nil, err
	}
	glog.V(2).Infof("mcu: -> %q", line)

	lines, err := m.awaitPrompt(s, timeout)
	if len(lines) > 0 && lines[0] == line {
		lines = lines[1:]
	}
	if err != nil {
		return lines, fmt.Errorf("%s: %w", line, err)
	}

	for _, l := range lines {
		if msg, ok := strings.CutPrefix(l, protocol.ErrorPrefix); ok {
			return lines, fmt.Errorf("%s: %w: %s", line, ErrDevice, msg)
		}
	}
	return lines, nil
}

func (m *MCU) awaitPrompt(s *session, timeout time.Duration) ([]string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var lines []string
	for {
		select {
		case ev := <-s.events:
			if ev.prompt {
				return lines, nil
			}
			lines = append(lines, ev.line)
		case <-s.done:
			if err := m.Err(); err != nil && !errors.Is(err, io.EOF) {
				return lines, fmt.Errorf("connection lost: %w", err)
			}
			return lines, ErrNotConnected
		case <-timer.C:
			return lines, ErrTimeout
		}
	}
}

// StartStream switches the device to telemetry and routes every streamed
// line to fn until StopStream
func (m *MCU) StartStream(fn func(line string), timeout time.Duration) error {
	m.mu.Lock()
	m.onStream = fn
	m.mu.Unlock()

	if _, err := m.Command("stream.start", timeout); err != nil {
		return err
	}
	if !m.Streaming() {
		return fmt.Errorf("stream.start: device did not switch to streaming")
	}
	return nil
}

// StopStream sends the ETX escape and waits for the device to return to
// the console. The device must be configured with stream_escape enabled;
// otherwise it ignores all input while streaming.
func (m *MCU) StopStream(timeout time.Duration) error {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	if !m.Streaming() {
		return nil
	}
	s := m.current()
	if s == nil {
		return ErrNotConnected
	}
	if err := s.write([]byte{protocol.ETX}); err != nil {
		return err
	}
	if _, err := m.awaitPrompt(s, timeout); err != nil {
		return fmt.Errorf("stream stop: %w", err)
	}
	if m.Streaming() {
		return fmt.Errorf("stream stop: device kept streaming")
	}
	return nil
}

// Status runs device.status and returns its "Key: value" lines as a map
func (m *MCU) Status(timeout time.Duration) (map[string]string, error) {
	lines, err := m.Command("device.status", timeout)
	if err != nil {
		return nil, err
	}

	status := make(map[string]string, len(lines))
	for _, l := range lines {
		key, val, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		status[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return status, nil
}

// PrintStatus prints a device.status map in a stable order
func PrintStatus(w io.Writer, status map[string]string) {
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "=== Device Status ===")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-8s %s\n", k+":", status[k])
	}
}
