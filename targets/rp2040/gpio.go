//go:build rp2040

package main

import (
	"errors"
	"machine"

	"posturemon/core"
)

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	machinePin, err := d.pinNumberToMachinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = machinePin
	return nil
}

// ConfigureInputPullUp configures a pin as an input with pull-up resistor
func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	machinePin, err := d.pinNumberToMachinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return errors.New("pin not configured")
	}
	machinePin.Set(value)
	return nil
}

// ReadPin reads the current pin level
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return true // Unconfigured inputs read as released
	}
	return machinePin.Get()
}

// pinNumberToMachinePin maps GPIO0-GPIO29
func (d *RPGPIODriver) pinNumberToMachinePin(pin core.GPIOPin) (machine.Pin, error) {
	if pin > 29 {
		return 0, errors.New("invalid GPIO pin")
	}
	return machine.Pin(pin), nil
}
