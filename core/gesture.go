package core

import "posturemon/config"

// GestureDetector turns a polled, active-low button level into press
// gestures. A level change must persist for settleMS before it counts as an
// edge; the edge is stamped with the tick at which it was first seen, so
// settling delays detection without skewing durations.
type GestureDetector struct {
	debounceMS uint32
	longMS     uint32
	settleMS   uint32

	stable       Level // committed level
	pending      bool
	pendingSince uint32

	pressed    bool
	pressStart uint32
}

// NewGestureDetector creates a detector with the button released
func NewGestureDetector(cfg config.GestureConfig) *GestureDetector {
	return &GestureDetector{
		debounceMS: cfg.DebounceMS,
		longMS:     cfg.LongPressMS,
		settleMS:   cfg.SettleMS,
		stable:     High,
	}
}

// Poll feeds one sample taken at now. An event is only ever produced on
// release (rising edge); pressing produces PressNone.
func (g *GestureDetector) Poll(level Level, now uint32) PressEvent {
	if level == g.stable {
		// Glitch shorter than the settle time, or nothing happening
		g.pending = false
		return PressNone
	}

	if !g.pending {
		g.pending = true
		g.pendingSince = now
	}
	if Elapsed(now, g.pendingSince) < g.settleMS {
		return PressNone // Check again next tick
	}

	edge := g.pendingSince
	g.pending = false
	g.stable = level

	if level == Low {
		g.pressed = true
		g.pressStart = edge
		return PressNone
	}

	if !g.pressed {
		// Released without a recorded press (held at boot)
		return PressNone
	}
	g.pressed = false
	return g.Classify(Elapsed(edge, g.pressStart))
}

// Classify maps a hold duration to a gesture
func (g *GestureDetector) Classify(durationMS uint32) PressEvent {
	switch {
	case durationMS >= g.longMS:
		return PressLong
	case durationMS >= g.debounceMS:
		return PressShort
	default:
		return PressNone
	}
}

// Pressed reports whether the button is currently held
func (g *GestureDetector) Pressed() bool {
	return g.pressed
}
