package mcu

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posturemon/protocol"
)

// fakeDevice is a scripted console on the far end of a pipe
type fakeDevice struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	mu      sync.Mutex
	line    []byte
	sent    []string
	replies map[string]string
	onETX   string
	out     chan string
}

func newFakeDevice(replies map[string]string) *fakeDevice {
	pr, pw := io.Pipe()
	f := &fakeDevice{pr: pr, pw: pw, replies: replies, out: make(chan string, 16)}
	go func() {
		for s := range f.out {
			if _, err := io.WriteString(pw, s); err != nil {
				return
			}
		}
	}()
	return f
}

func (f *fakeDevice) Read(p []byte) (int, error) { return f.pr.Read(p) }

func (f *fakeDevice) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range p {
		switch b {
		case protocol.ETX:
			f.out <- f.onETX
		case '\r':
			line := string(f.line)
			f.line = f.line[:0]
			f.sent = append(f.sent, line)
			reply, ok := f.replies[line]
			if !ok {
				reply = "ERROR: Unknown command. Type 'help'\r\n"
			}
			f.out <- line + "\r\n" + reply + protocol.Prompt
		default:
			f.line = append(f.line, b)
		}
	}
	return len(p), nil
}

func (f *fakeDevice) Close() error {
	f.pr.Close()
	return f.pw.Close()
}

func (f *fakeDevice) Flush() error { return nil }

func attach(t *testing.T, f *fakeDevice) *MCU {
	t.Helper()
	m := NewMCU()
	m.Attach(f)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestCommandStripsEchoAndPrompt(t *testing.T) {
	f := newFakeDevice(map[string]string{
		"state.get": "State = Sleeping\r\n",
	})
	f.out <- "PostureMonitor v0.3.0\r\nType 'help' for commands\r\n\r\n" + protocol.Prompt
	m := attach(t, f)

	// Let the banner arrive so Command has something stale to discard
	time.Sleep(20 * time.Millisecond)

	lines, err := m.Command("state.get", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"State = Sleeping"}, lines)
	assert.True(t, m.IsConnected())
}

func TestCommandReportsDeviceErrors(t *testing.T) {
	f := newFakeDevice(map[string]string{
		"state.set": "ERROR: Usage: state.set {sleep|monitor|calib}\r\n",
	})
	m := attach(t, f)

	lines, err := m.Command("bogus", time.Second)
	assert.ErrorIs(t, err, ErrDevice)
	assert.Contains(t, err.Error(), "Unknown command")
	assert.Len(t, lines, 1)

	_, err = m.Command("state.set", time.Second)
	assert.ErrorIs(t, err, ErrDevice)
	assert.Contains(t, err.Error(), "Usage: state.set")
}

// silentPort accepts writes and never answers
type silentPort struct {
	pr *io.PipeReader
	pw *io.PipeWriter
}

func (p silentPort) Read(b []byte) (int, error) { return p.pr.Read(b) }
func (p silentPort) Write(b []byte) (int, error) { return len(b), nil }
func (p silentPort) Close() error { return p.pw.Close() }
func (p silentPort) Flush() error { return nil }

func TestCommandTimesOut(t *testing.T) {
	pr, pw := io.Pipe()
	m := NewMCU()
	m.Attach(silentPort{pr, pw})
	defer m.Close()

	_, err := m.Command("help", 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStreamRoutesFramesToHandler(t *testing.T) {
	frame := "[dev=PostureMonitor state=Monitoring alert=Normal tilt=1.0° accel=(0,0,16384) neo=(0,30,0) led=off cnt=0 t=100]\r\n"
	f := newFakeDevice(map[string]string{
		"stream.start": "[Switching to streaming mode...]\r\n",
	})
	f.onETX = "[Switching to CLI mode...]\r\n" + protocol.Prompt
	m := attach(t, f)

	var mu sync.Mutex
	var got []string
	err := m.StartStream(func(line string) {
		mu.Lock()
		got = append(got, line)
		mu.Unlock()
	}, time.Second)
	require.NoError(t, err)
	assert.True(t, m.Streaming())

	f.out <- frame + frame

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, time.Millisecond)
	assert.True(t, strings.HasPrefix(got[0], "[dev=PostureMonitor"))

	require.NoError(t, m.StopStream(time.Second))
	assert.False(t, m.Streaming())
}

func TestStatusParsesKeyValueLines(t *testing.T) {
	f := newFakeDevice(map[string]string{
		"device.status": "Device: PostureMonitor\r\nState: Monitoring\r\nAlert: Warning (tilt=42.0°)\r\nUptime: 1200 ms\r\n",
	})
	m := attach(t, f)

	status, err := m.Status(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Monitoring", status["State"])
	assert.Equal(t, "Warning (tilt=42.0°)", status["Alert"])

	var buf bytes.Buffer
	PrintStatus(&buf, status)
	out := buf.String()
	assert.True(t, strings.Index(out, "Alert:") < strings.Index(out, "Uptime:"))
}

func TestClosedClientRejectsCommands(t *testing.T) {
	f := newFakeDevice(nil)
	m := NewMCU()
	m.Attach(f)
	require.NoError(t, m.Close())

	_, err := m.Command("help", 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestAttachReplacesPreviousPort(t *testing.T) {
	first := newFakeDevice(map[string]string{"state.get": "State = Sleeping\r\n"})
	m := attach(t, first)
	_, err := m.Command("state.get", time.Second)
	require.NoError(t, err)

	second := newFakeDevice(map[string]string{"state.get": "State = Monitoring\r\n"})
	m.Attach(second)

	// The first reader saw its pipe close; that must not tear down the new one
	time.Sleep(20 * time.Millisecond)
	assert.True(t, m.IsConnected())
	assert.NoError(t, m.Err())

	lines, err := m.Command("state.get", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"State = Monitoring"}, lines)
	assert.Equal(t, []string{"state.get"}, second.sent)
}
