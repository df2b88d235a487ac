package core

import (
	"posturemon/config"
	"posturemon/protocol"
)

// Telemetry paces status frames while the link is streaming
type Telemetry struct {
	interval uint32
	last     uint32
	started  bool
	count    uint32
	line     protocol.LineWriter
}

// NewTelemetry creates an idle streamer
func NewTelemetry(cfg config.TelemetryConfig) Telemetry {
	return Telemetry{interval: cfg.IntervalMS}
}

// Start arms the streamer so the next Due reports true immediately
func (t *Telemetry) Start() {
	t.started = false
}

// Due reports whether a frame should be sent at now
func (t *Telemetry) Due(now uint32) bool {
	return !t.started || Elapsed(now, t.last) >= t.interval
}

// Emit stamps f with the sequence counter and writes it to link
func (t *Telemetry) Emit(link Link, f protocol.Frame, now uint32) error {
	f.Count = t.count
	t.count++ // Wraps at 2^32
	t.last = now
	t.started = true

	t.line.Reset()
	protocol.AppendFrame(&t.line, f)
	_, err := link.Write(t.line.Result())
	return err
}

// Count returns the number of frames emitted
func (t *Telemetry) Count() uint32 {
	return t.count
}
