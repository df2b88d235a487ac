package protocol

import (
	"errors"
	"io"
)

// ErrTxDropped is returned by TxQueue.Write when the port refused data and
// part of the write was discarded
var ErrTxDropped = errors.New("tx queue full, output dropped")

// maxWriteFailures is how many consecutive port errors mark the host as gone
const maxWriteFailures = 10

// TxQueue buffers console output in a FifoBuffer and pushes it to a port
// that may refuse writes while no host is attached.
type TxQueue struct {
	port io.Writer
	fifo *FifoBuffer

	failures     uint32
	disconnected bool
}

// NewTxQueue creates a queue of size bytes in front of port
func NewTxQueue(port io.Writer, size int) *TxQueue {
	return &TxQueue{
		port: port,
		fifo: NewFifoBuffer(size),
	}
}

// Write queues p, flushing early when the queue fills. It returns how many
// bytes were queued and ErrTxDropped if the rest had to be discarded.
func (q *TxQueue) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		total += q.fifo.Write(p[total:])
		if total < len(p) && !q.Flush() {
			return total, ErrTxDropped
		}
	}
	return total, nil
}

// Flush writes queued output to the port. It returns false when the port
// refused data; refused bytes stay queued.
func (q *TxQueue) Flush() bool {
	var chunk [64]byte
	for !q.fifo.IsEmpty() {
		n := q.fifo.Peek(chunk[:])
		written, err := q.port.Write(chunk[:n])
		if written > 0 {
			q.fifo.Discard(written)
		}
		if err != nil {
			q.failures++
			// Host is gone: stop queueing stale output
			if q.failures > maxWriteFailures {
				q.disconnected = true
				q.failures = 0
				q.fifo.Reset()
			}
			return false
		}
		q.failures = 0
	}
	return true
}

// Reconnected clears the disconnected state once the host sends input again
func (q *TxQueue) Reconnected() {
	q.disconnected = false
	q.failures = 0
}

// Disconnected reports whether repeated write failures discarded the queue
func (q *TxQueue) Disconnected() bool {
	return q.disconnected
}

// Pending returns the number of queued bytes
func (q *TxQueue) Pending() int {
	return q.fifo.Available()
}
