package core

// PWMIndicator drives a common-cathode RGB LED from three PWM channels
type PWMIndicator struct {
	drv  PWMDriver
	pins [3]PWMPin
	max  uint32
}

// NewPWMIndicator configures the red, green and blue pins for PWM and
// starts dark.
func NewPWMIndicator(drv PWMDriver, pins [3]PWMPin, periodUS uint32) (*PWMIndicator, error) {
	for _, pin := range pins {
		if _, err := drv.ConfigureHardwarePWM(pin, periodUS); err != nil {
			return nil, err
		}
	}
	ind := &PWMIndicator{drv: drv, pins: pins, max: drv.GetMaxValue()}
	if err := ind.SetColor(ColorOff); err != nil {
		return nil, err
	}
	return ind, nil
}

// SetColor scales each 8-bit component to the driver's duty range
func (p *PWMIndicator) SetColor(c Color) error {
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		duty := PWMValue(uint32(v) * p.max / 255)
		if err := p.drv.SetDutyCycle(p.pins[i], duty); err != nil {
			return err
		}
	}
	return nil
}

// Close returns the pins to GPIO mode
func (p *PWMIndicator) Close() error {
	var first error
	for _, pin := range p.pins {
		if err := p.drv.DisablePWM(pin); err != nil && first == nil {
			first = err
		}
	}
	return first
}
