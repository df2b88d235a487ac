package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMValue is the duty cycle value (0 to GetMaxValue)
type PWMValue uint32

// PWMDriver is the abstract PWM interface that targets implement.
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for hardware PWM output
	// periodUS: PWM period in microseconds
	// Returns the actual period used (may be adjusted for hardware constraints)
	ConfigureHardwarePWM(pin PWMPin, periodUS uint32) (uint32, error)

	// SetDutyCycle sets the PWM duty cycle for a pin
	// value: 0 (fully off) to GetMaxValue() (fully on)
	SetDutyCycle(pin PWMPin, value PWMValue) error

	// GetMaxValue returns the maximum PWM value (e.g., 255 for 8-bit)
	GetMaxValue() uint32

	// DisablePWM disables PWM on a pin and returns it to GPIO mode
	DisablePWM(pin PWMPin) error
}

// Color is an 8-bit RGB colour for the status indicator
type Color struct {
	R, G, B uint8
}

// ColorOff is the dark indicator colour
var ColorOff = Color{}

// Indicator is the colour status light (a single WS2812 pixel or an RGB LED)
type Indicator interface {
	SetColor(c Color) error
}
