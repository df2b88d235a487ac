package core

import "posturemon/config"

// Blinker is the square-wave oscillator behind the status LED. Normal is
// steady off; Warning and Alert blink at their own half-periods.
type Blinker struct {
	warningMS uint32
	alertMS   uint32

	active bool
	level  AlertLevel
	on     bool
	last   uint32
}

// NewBlinker creates a stopped oscillator
func NewBlinker(cfg config.AlertConfig) Blinker {
	return Blinker{warningMS: cfg.WarningBlinkMS, alertMS: cfg.AlertBlinkMS}
}

// Tick returns the LED state for now. A level change restarts the
// half-period from now, and a blinking level always starts lit.
func (b *Blinker) Tick(level AlertLevel, now uint32) bool {
	if !b.active || level != b.level {
		b.active = true
		b.level = level
		b.last = now
		b.on = b.halfPeriod(level) != 0
		return b.on
	}

	half := b.halfPeriod(level)
	if half == 0 {
		b.on = false
		return false
	}
	if Elapsed(now, b.last) >= half {
		b.on = !b.on
		b.last = now
	}
	return b.on
}

// Stop forces the output off; the next Tick starts a fresh phase
func (b *Blinker) Stop() {
	b.active = false
	b.on = false
}

// On returns the current output
func (b *Blinker) On() bool {
	return b.on
}

func (b *Blinker) halfPeriod(level AlertLevel) uint32 {
	switch level {
	case AlertWarning:
		return b.warningMS
	case AlertAlert:
		return b.alertMS
	default:
		return 0
	}
}
