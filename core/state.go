package core

// DeviceState is the top-level mode of the monitor
type DeviceState uint8

const (
	Sleeping DeviceState = iota
	Monitoring
	Calibrating
	numDeviceStates
)

func (s DeviceState) String() string {
	switch s {
	case Sleeping:
		return "Sleeping"
	case Monitoring:
		return "Monitoring"
	case Calibrating:
		return "Calibrating"
	default:
		return "Invalid"
	}
}

// AlertLevel is the posture severity, meaningful only while Monitoring
type AlertLevel uint8

const (
	AlertNormal AlertLevel = iota
	AlertWarning
	AlertAlert
	numAlertLevels
)

func (a AlertLevel) String() string {
	switch a {
	case AlertNormal:
		return "Normal"
	case AlertWarning:
		return "Warning"
	case AlertAlert:
		return "Alert"
	default:
		return "Invalid"
	}
}

// PressEvent is a classified button gesture
type PressEvent uint8

const (
	PressNone PressEvent = iota
	PressShort
	PressLong
)

func (p PressEvent) String() string {
	switch p {
	case PressNone:
		return "None"
	case PressShort:
		return "Short"
	case PressLong:
		return "Long"
	default:
		return "Invalid"
	}
}

// LinkMode selects which component owns the serial link
type LinkMode uint8

const (
	LinkCommand LinkMode = iota
	LinkStreaming
	numLinkModes
)

func (m LinkMode) String() string {
	switch m {
	case LinkCommand:
		return "Command"
	case LinkStreaming:
		return "Streaming"
	default:
		return "Invalid"
	}
}

// transitionAllowed is the table of transitions a press or command may
// request. Calibrating has no entries: only calibration completion leaves it.
func transitionAllowed(from, to DeviceState) bool {
	switch from {
	case Sleeping:
		return to == Monitoring
	case Monitoring:
		return to == Calibrating || to == Sleeping
	}
	return false
}

// ParseState maps the state.set argument to a DeviceState
func ParseState(s string) (DeviceState, bool) {
	switch s {
	case "sleep":
		return Sleeping, true
	case "monitor":
		return Monitoring, true
	case "calib":
		return Calibrating, true
	}
	return 0, false
}
