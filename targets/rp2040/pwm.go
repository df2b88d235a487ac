//go:build rp2040

package main

import (
	"machine"

	"posturemon/core"
)

// pwmMax is the duty resolution exposed to core
const pwmMax = 255

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements the PWMDriver interface for RP2040
// Leverages RP2040's 8 hardware PWM slices with 2 channels each
type RP2040PWMDriver struct {
	// Key: slice number (0-7), Value: configured period in nanoseconds
	slices map[uint8]uint64

	// Key: pin number, Value: PWM channel
	channels map[uint32]uint8

	// Key: slice number (0-7), Value: PWM peripheral
	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		slices:      make(map[uint8]uint64),
		channels:    make(map[uint32]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// GetMaxValue returns the maximum PWM value
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return pwmMax
}

// ConfigureHardwarePWM configures a pin for hardware PWM output
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, periodUS uint32) (uint32, error) {
	pinNum := uint32(pin)

	// GPIO N maps to slice (N >> 1) & 7, channel N & 1
	sliceNum := uint8((pinNum >> 1) & 0x7)

	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = d.getPWMPeripheral(sliceNum)
		d.peripherals[sliceNum] = pwm
	}

	period := uint64(periodUS) * 1000

	// Both channels of a slice share one period; the last caller wins
	err := pwm.Configure(machine.PWMConfig{
		Period: period,
	})
	if err != nil {
		return 0, err
	}

	channel, err := pwm.Channel(machine.Pin(pinNum))
	if err != nil {
		return 0, err
	}

	d.slices[sliceNum] = period
	d.channels[pinNum] = channel

	return periodUS, nil
}

// SetDutyCycle sets the PWM duty cycle for a pin
// value: 0 (fully off) to 255 (fully on)
func (d *RP2040PWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	pinNum := uint32(pin)

	channel, exists := d.channels[pinNum]
	if !exists {
		return nil
	}

	sliceNum := uint8((pinNum >> 1) & 0x7)
	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		return nil
	}

	// Scale 0-255 to 0-Top()
	top := pwm.Top()
	pwm.Set(channel, (uint32(value)*top)/pwmMax)

	return nil
}

// DisablePWM drives the pin low and forgets it
func (d *RP2040PWMDriver) DisablePWM(pin core.PWMPin) error {
	pinNum := uint32(pin)

	// TinyGo has no way to release a PWM channel; park it at zero duty
	if err := d.SetDutyCycle(pin, 0); err != nil {
		return err
	}
	delete(d.channels, pinNum)

	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
func (d *RP2040PWMDriver) getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
