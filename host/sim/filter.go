package sim

import (
	"posturemon/core"
	"posturemon/protocol"
)

// ControlFilter sits between a Link and the device. Lines whose first byte
// is ControlPrefix are collected and handed to a callback; every other
// byte passes through untouched.
type ControlFilter struct {
	inner   core.Link
	handle  func(line string) string
	atStart bool
	inCtl   bool
	ctl     []byte
}

// NewControlFilter wraps inner; handle returns the reply for a control line
func NewControlFilter(inner core.Link, handle func(line string) string) *ControlFilter {
	return &ControlFilter{inner: inner, handle: handle, atStart: true}
}

// TryReadByte returns the next byte meant for the device
func (f *ControlFilter) TryReadByte() (byte, bool) {
	for {
		b, ok := f.inner.TryReadByte()
		if !ok {
			return 0, false
		}

		if f.inCtl {
			if protocol.IsLineEnd(b) {
				f.inCtl = false
				f.atStart = true
				reply := f.handle(string(f.ctl))
				f.ctl = f.ctl[:0]
				if reply != "" {
					f.inner.Write([]byte(reply + protocol.CRLF))
				}
			} else if len(f.ctl) < protocol.LineMax {
				f.ctl = append(f.ctl, b)
			}
			continue
		}

		if f.atStart && b == ControlPrefix {
			f.inCtl = true
			continue
		}
		f.atStart = protocol.IsLineEnd(b)
		return b, true
	}
}

// Write passes device output through
func (f *ControlFilter) Write(p []byte) (int, error) {
	return f.inner.Write(p)
}
