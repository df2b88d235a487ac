package core

// PinInput adapts one pin of a GPIODriver to DigitalInput
type PinInput struct {
	drv GPIODriver
	pin GPIOPin
}

// NewPinInput configures pin as an input with pull-up. With a button wired
// to ground, Low means pressed.
func NewPinInput(drv GPIODriver, pin GPIOPin) (*PinInput, error) {
	if err := drv.ConfigureInputPullUp(pin); err != nil {
		return nil, err
	}
	return &PinInput{drv: drv, pin: pin}, nil
}

// Level samples the pin
func (p *PinInput) Level() Level {
	if p.drv.ReadPin(p.pin) {
		return High
	}
	return Low
}

// PinOutput adapts one pin of a GPIODriver to DigitalOutput
type PinOutput struct {
	drv GPIODriver
	pin GPIOPin
}

// NewPinOutput configures pin as an output and drives it low
func NewPinOutput(drv GPIODriver, pin GPIOPin) (*PinOutput, error) {
	if err := drv.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	if err := drv.SetPin(pin, false); err != nil {
		return nil, err
	}
	return &PinOutput{drv: drv, pin: pin}, nil
}

// Set drives the pin high for on, low for off
func (p *PinOutput) Set(on bool) error {
	return p.drv.SetPin(p.pin, on)
}
