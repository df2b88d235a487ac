package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Level is the electrical state of a digital line
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "High"
	}
	return "Low"
}

// GPIODriver is the abstract GPIO interface that targets implement.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// DigitalInput is a single sampled input line, such as the user button
type DigitalInput interface {
	Level() Level
}

// DigitalOutput is a single on/off output line, such as the status LED
type DigitalOutput interface {
	Set(on bool) error
}
