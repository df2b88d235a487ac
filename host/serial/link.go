//go:build !tinygo

package serial

import (
	"io"
	"sync"
)

// DefaultLinkBuffer is the receive queue depth of a StreamLink
const DefaultLinkBuffer = 1024

// StreamLink adapts a blocking byte stream into a non-blocking device link.
// A reader goroutine moves received bytes into a buffered channel, so
// TryReadByte never blocks the control loop. Bytes arriving while the queue
// is full wait in the reader, the way a UART FIFO applies back-pressure.
type StreamLink struct {
	w   io.Writer
	rx  chan byte
	mu  sync.Mutex
	err error

	done chan struct{}
}

// NewStreamLink starts reading r in the background. w receives everything
// the device writes.
func NewStreamLink(r io.Reader, w io.Writer, depth int) *StreamLink {
	if depth <= 0 {
		depth = DefaultLinkBuffer
	}
	l := &StreamLink{
		w:    w,
		rx:   make(chan byte, depth),
		done: make(chan struct{}),
	}
	go l.readLoop(r)
	return l
}

// NewPortLink is NewStreamLink over both directions of an open Port
func NewPortLink(p Port) *StreamLink {
	return NewStreamLink(p, p, DefaultLinkBuffer)
}

func (l *StreamLink) readLoop(r io.Reader) {
	defer close(l.done)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			l.rx <- b
		}
		if err != nil {
			if IsTimeout(err) {
				continue
			}
			l.setErr(err)
			return
		}
	}
}

func (l *StreamLink) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// TryReadByte returns the next queued byte without blocking
func (l *StreamLink) TryReadByte() (byte, bool) {
	select {
	case b := <-l.rx:
		return b, true
	default:
		return 0, false
	}
}

// Write sends p straight to the underlying writer
func (l *StreamLink) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

// Pending returns the number of received bytes not yet read
func (l *StreamLink) Pending() int {
	return len(l.rx)
}

// Done is closed once the reader goroutine has stopped
func (l *StreamLink) Done() <-chan struct{} {
	return l.done
}

// Err returns the error that stopped the reader, if any. A clean end of
// stream is reported as io.EOF.
func (l *StreamLink) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
