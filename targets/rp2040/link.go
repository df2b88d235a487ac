//go:build rp2040

package main

import (
	"machine"

	"posturemon/protocol"
)

// serialLink is the device's console link. Reads poll the port's receive
// buffer; writes are queued and pushed out once per loop iteration.
type serialLink struct {
	port machine.Serialer
	tx   *protocol.TxQueue
}

func newSerialLink(port machine.Serialer, txSize int) *serialLink {
	return &serialLink{
		port: port,
		tx:   protocol.NewTxQueue(port, txSize),
	}
}

// TryReadByte never blocks
func (l *serialLink) TryReadByte() (byte, bool) {
	if l.port.Buffered() == 0 {
		return 0, false
	}
	b, err := l.port.ReadByte()
	if err != nil {
		return 0, false
	}
	if l.tx.Disconnected() {
		// Host is back; stale output was discarded while it was away
		l.tx.Reconnected()
	}
	return b, true
}

// Write queues p. A short count means the port is stuck and the rest of p
// was dropped.
func (l *serialLink) Write(p []byte) (int, error) {
	return l.tx.Write(p)
}

func (l *serialLink) flush() {
	l.tx.Flush()
}
