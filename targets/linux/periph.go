//go:build linux && !tinygo

package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"posturemon/core"
)

// pinByNumber resolves a BCM GPIO number through the periph registry
func pinByNumber(n uint32) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", n)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	return p, nil
}

// PeriphGPIODriver implements core.GPIODriver on periph pins
type PeriphGPIODriver struct {
	pins map[core.GPIOPin]gpio.PinIO
}

// NewPeriphGPIODriver returns a driver with no pins claimed
func NewPeriphGPIODriver() *PeriphGPIODriver {
	return &PeriphGPIODriver{pins: make(map[core.GPIOPin]gpio.PinIO)}
}

func (d *PeriphGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := pinByNumber(uint32(pin))
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("%s: output: %w", p, err)
	}
	d.pins[pin] = p
	return nil
}

func (d *PeriphGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	p, err := pinByNumber(uint32(pin))
	if err != nil {
		return err
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("%s: input: %w", p, err)
	}
	d.pins[pin] = p
	return nil
}

func (d *PeriphGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := d.pins[pin]
	if !ok {
		return fmt.Errorf("GPIO%d not configured", pin)
	}
	return p.Out(gpio.Level(value))
}

func (d *PeriphGPIODriver) ReadPin(pin core.GPIOPin) bool {
	p, ok := d.pins[pin]
	if !ok {
		return true
	}
	return bool(p.Read())
}

// PeriphPWMDriver implements core.PWMDriver with periph's PWM output,
// which falls back to DMA driven software PWM on pins without hardware PWM
type PeriphPWMDriver struct {
	pins map[core.PWMPin]gpio.PinIO
	freq map[core.PWMPin]physic.Frequency
}

// NewPeriphPWMDriver returns a driver with no pins claimed
func NewPeriphPWMDriver() *PeriphPWMDriver {
	return &PeriphPWMDriver{
		pins: make(map[core.PWMPin]gpio.PinIO),
		freq: make(map[core.PWMPin]physic.Frequency),
	}
}

// periodToFrequency converts a period in microseconds to a frequency
func periodToFrequency(periodUS uint32) physic.Frequency {
	if periodUS == 0 {
		return 0
	}
	return physic.Frequency(1000000/uint64(periodUS)) * physic.Hertz
}

func (d *PeriphPWMDriver) ConfigureHardwarePWM(pin core.PWMPin, periodUS uint32) (uint32, error) {
	f := periodToFrequency(periodUS)
	if f == 0 {
		return 0, fmt.Errorf("GPIO%d: invalid PWM period %dus", pin, periodUS)
	}
	p, err := pinByNumber(uint32(pin))
	if err != nil {
		return 0, err
	}
	d.pins[pin] = p
	d.freq[pin] = f
	return periodUS, nil
}

func (d *PeriphPWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	p, ok := d.pins[pin]
	if !ok {
		return fmt.Errorf("GPIO%d not configured for PWM", pin)
	}
	if value == 0 {
		return p.Out(gpio.Low)
	}
	return p.PWM(gpio.Duty(value), d.freq[pin])
}

func (d *PeriphPWMDriver) GetMaxValue() uint32 {
	return uint32(gpio.DutyMax)
}

func (d *PeriphPWMDriver) DisablePWM(pin core.PWMPin) error {
	p, ok := d.pins[pin]
	if !ok {
		return nil
	}
	delete(d.pins, pin)
	delete(d.freq, pin)
	return p.Out(gpio.Low)
}
