package core

import "posturemon/protocol"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a state-relevant event for post-mortem analysis
type Event struct {
	Kind   uint8  // Event type code
	Clock  uint32 // Tick clock at event
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPress   = 1 // Gesture classified: v1=PressEvent v2=state
	EvtDropped = 2 // Press ignored by the state machine: v1=PressEvent v2=state
	EvtState   = 3 // State transition: v1=from v2=to
	EvtAlert   = 4 // Alert level change: v1=from v2=to
	EvtCalib   = 5 // Calibration finished: v1=samples
	EvtLink    = 6 // Link mode change: v1=from v2=to
	EvtSensor  = 7 // Sensor read failure streak began: v1=0 accel, 1 gyro
	EvtFault   = 8 // Device halted
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, glog, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// EventRing is a fixed-size ring of recent events. Recording never
// allocates and never blocks; the oldest entry is overwritten.
type EventRing struct {
	events [EventRingSize]Event
	head   uint8
	total  uint32
}

// Record captures an event in the ring buffer
func (r *EventRing) Record(kind uint8, clock, value1, value2 uint32) {
	idx := r.head
	r.events[idx] = Event{
		Kind:   kind,
		Clock:  clock,
		Value1: value1,
		Value2: value2,
	}
	r.head = (idx + 1) % EventRingSize
	r.total++
}

// Total returns how many events were ever recorded, including overwritten ones
func (r *EventRing) Total() uint32 {
	return r.total
}

// Each calls fn for every recorded event from oldest to newest
func (r *EventRing) Each(fn func(Event)) {
	start := r.head
	for i := uint8(0); i < EventRingSize; i++ {
		idx := (start + i) % EventRingSize
		evt := r.events[idx]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		fn(evt)
	}
}

// Last returns the most recent event, or false if none was recorded
func (r *EventRing) Last() (Event, bool) {
	if r.total == 0 {
		return Event{}, false
	}
	return r.events[(r.head+EventRingSize-1)%EventRingSize], true
}

// Clear empties the ring
func (r *EventRing) Clear() {
	for i := range r.events {
		r.events[i] = Event{}
	}
	r.head = 0
	r.total = 0
}

// Dump writes one line per event through w
func (r *EventRing) Dump(w func(string)) {
	r.Each(func(evt Event) {
		w(FormatEvent(evt))
	})
}

// FormatEvent renders evt with symbolic values where the kind has them
func FormatEvent(evt Event) string {
	head := "t=" + protocol.Utoa(evt.Clock) + " " + EventName(evt.Kind)
	switch evt.Kind {
	case EvtPress, EvtDropped:
		return head + " " + PressEvent(evt.Value1).String() + " in " + DeviceState(evt.Value2).String()
	case EvtState:
		return head + " " + DeviceState(evt.Value1).String() + " -> " + DeviceState(evt.Value2).String()
	case EvtAlert:
		return head + " " + AlertLevel(evt.Value1).String() + " -> " + AlertLevel(evt.Value2).String()
	case EvtLink:
		return head + " " + LinkMode(evt.Value1).String() + " -> " + LinkMode(evt.Value2).String()
	default:
		return head + " v1=" + protocol.Utoa(evt.Value1) + " v2=" + protocol.Utoa(evt.Value2)
	}
}

// EventName returns the short name of an event kind
func EventName(kind uint8) string {
	switch kind {
	case EvtPress:
		return "PRESS"
	case EvtDropped:
		return "DROPPED"
	case EvtState:
		return "STATE"
	case EvtAlert:
		return "ALERT"
	case EvtCalib:
		return "CALIB"
	case EvtLink:
		return "LINK"
	case EvtSensor:
		return "SENSOR"
	case EvtFault:
		return "FAULT!"
	default:
		return "UNKNOWN"
	}
}
