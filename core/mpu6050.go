package core

import (
	"errors"

	"tinygo.org/x/drivers/mpu6050"
)

// MPU6050Identity is the WHO_AM_I value of a genuine part
const MPU6050Identity = 0x68

var errNoBus = errors.New("mpu6050: no I2C bus")

// MPU6050 reads an InvenSense MPU-6050 over I2C using raw register access.
// It assumes the power-on full-scale ranges: ±2 g and ±250 °/s.
type MPU6050 struct {
	bus  I2CBus
	addr uint16
	reg  [2]byte
	buf  [6]byte
}

// NewMPU6050 creates a driver for the sensor at addr on bus
func NewMPU6050(bus I2CBus, addr uint16) *MPU6050 {
	return &MPU6050{bus: bus, addr: addr}
}

// Wake clears the SLEEP bit in PWR_MGMT_1
func (m *MPU6050) Wake() error {
	if m.bus == nil {
		return errNoBus
	}
	m.reg[0] = mpu6050.PWR_MGMT_1
	m.reg[1] = 0
	return m.bus.Tx(m.addr, m.reg[:2], nil)
}

// ReadIdentity reads WHO_AM_I
func (m *MPU6050) ReadIdentity() (uint8, error) {
	if m.bus == nil {
		return 0, errNoBus
	}
	m.reg[0] = mpu6050.WHO_AM_I
	if err := m.bus.Tx(m.addr, m.reg[:1], m.buf[:1]); err != nil {
		return 0, err
	}
	return m.buf[0], nil
}

// ReadAccel reads ACCEL_XOUT_H..ACCEL_ZOUT_L in one burst
func (m *MPU6050) ReadAccel() (Sample, error) {
	return m.readTriple(mpu6050.ACCEL_XOUT_H)
}

// ReadGyro reads GYRO_XOUT_H..GYRO_ZOUT_L in one burst
func (m *MPU6050) ReadGyro() (Sample, error) {
	return m.readTriple(mpu6050.GYRO_XOUT_H)
}

func (m *MPU6050) readTriple(reg byte) (Sample, error) {
	if m.bus == nil {
		return Sample{}, errNoBus
	}
	m.reg[0] = reg
	if err := m.bus.Tx(m.addr, m.reg[:1], m.buf[:6]); err != nil {
		return Sample{}, err
	}
	// Registers are big-endian, high byte first
	return Sample{
		X: int16(uint16(m.buf[0])<<8 | uint16(m.buf[1])),
		Y: int16(uint16(m.buf[2])<<8 | uint16(m.buf[3])),
		Z: int16(uint16(m.buf[4])<<8 | uint16(m.buf[5])),
	}, nil
}
