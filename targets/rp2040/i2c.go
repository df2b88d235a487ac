//go:build rp2040

package main

import (
	"errors"
	"machine"

	"posturemon/config"
)

// configureI2C sets up the bus the MPU-6050 sits on. The pins pick the
// controller: GP0/1, GP4/5, GP8/9 and so on belong to I2C0, GP2/3, GP6/7
// and so on to I2C1.
func configureI2C(cfg *config.DeviceConfig) (*machine.I2C, error) {
	sda := machine.Pin(cfg.Pins.SDA)
	scl := machine.Pin(cfg.Pins.SCL)

	var i2c *machine.I2C
	switch {
	case (sda/2)%2 == 0 && (scl/2)%2 == 0:
		i2c = machine.I2C0
	case (sda/2)%2 == 1 && (scl/2)%2 == 1:
		i2c = machine.I2C1
	default:
		return nil, errors.New("SDA and SCL are on different I2C controllers")
	}

	err := i2c.Configure(machine.I2CConfig{
		Frequency: cfg.Bus.I2CFrequency,
		SDA:       sda,
		SCL:       scl,
	})
	if err != nil {
		return nil, err
	}
	return i2c, nil
}
