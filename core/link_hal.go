package core

// Link is the single point-to-point byte stream to the host
type Link interface {
	// TryReadByte returns the next received byte, or false when none is
	// pending. It must never block.
	TryReadByte() (byte, bool)

	// Write queues p for transmission
	Write(p []byte) (int, error)
}
