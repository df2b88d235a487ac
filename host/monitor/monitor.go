// Package monitor follows the device's serial output on the host side. It
// mirrors every line to an output and an optional log, and decodes
// telemetry frames to track sequence gaps.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"

	"posturemon/protocol"
)

// Stats counts what the monitor has seen so far
type Stats struct {
	Lines     uint64 // non-empty lines
	Frames    uint64 // decoded telemetry frames
	Malformed uint64 // bracketed key=value lines that failed to decode
	Other     uint64 // banners, prompts, command responses
	Gaps      uint64 // discontinuities in the frame counter
	Missed    uint64 // frames skipped across forward gaps
}

// Monitor classifies device output line by line. It is not safe for
// concurrent use; feed it from one reader.
type Monitor struct {
	out io.Writer
	log io.Writer

	stats    Stats
	last     protocol.Frame
	haveLast bool
	onFrame  func(protocol.Frame)
}

// New returns a monitor that echoes lines to out and, if log is non-nil,
// appends them to log. Either writer may be nil.
func New(out, log io.Writer) *Monitor {
	return &Monitor{out: out, log: log}
}

// OnFrame registers fn to be called for each decoded frame
func (m *Monitor) OnFrame(fn func(protocol.Frame)) {
	m.onFrame = fn
}

// Handle processes one line of device output
func (m *Monitor) Handle(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	m.stats.Lines++

	if m.out != nil {
		fmt.Fprintln(m.out, line)
	}
	if m.log != nil {
		if _, err := fmt.Fprintln(m.log, line); err != nil {
			glog.Warningf("monitor: log write failed: %v", err)
		}
	}

	f, err := protocol.ParseFrame(line)
	if err != nil {
		if looksLikeFrame(line) {
			m.stats.Malformed++
			glog.V(1).Infof("monitor: malformed frame %q: %v", line, err)
		} else {
			m.stats.Other++
		}
		return
	}

	m.stats.Frames++
	if m.haveLast && f.Count != m.last.Count+1 {
		m.stats.Gaps++
		if f.Count > m.last.Count {
			m.stats.Missed += uint64(f.Count - m.last.Count - 1)
		}
		glog.V(1).Infof("monitor: frame counter jumped %d -> %d", m.last.Count, f.Count)
	}
	m.last = f
	m.haveLast = true

	if m.onFrame != nil {
		m.onFrame(f)
	}
}

// looksLikeFrame separates damaged telemetry from bracketed status messages
// such as "[Switching to CLI mode...]"
func looksLikeFrame(line string) bool {
	return strings.HasPrefix(line, "[") && strings.Contains(line, "=")
}

// Run feeds every line read from r into Handle until r is exhausted. A
// clean end of input returns nil.
func (m *Monitor) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.Handle(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("monitor: read failed: %w", err)
	}
	return nil
}

// Stats returns the counters accumulated so far
func (m *Monitor) Stats() Stats {
	return m.stats
}

// Last returns the most recent decoded frame
func (m *Monitor) Last() (protocol.Frame, bool) {
	return m.last, m.haveLast
}

// Reset clears the counters and forgets the last frame, so the next frame
// does not count as a gap
func (m *Monitor) Reset() {
	m.stats = Stats{}
	m.last = protocol.Frame{}
	m.haveLast = false
}

// String renders the counters for a status line
func (s Stats) String() string {
	return fmt.Sprintf("lines=%d frames=%d malformed=%d other=%d gaps=%d missed=%d",
		s.Lines, s.Frames, s.Malformed, s.Other, s.Gaps, s.Missed)
}
