package core

// I2CBus is a combined write-then-read transaction on an I2C bus.
// Both TinyGo's machine.I2C and periph's i2c.Bus satisfy it, so the same
// sensor driver runs on the MCU and on a Linux board.
type I2CBus interface {
	// Tx writes w, then (after a repeated start) reads len(r) bytes into r.
	// Either slice may be empty.
	Tx(addr uint16, w, r []byte) error
}

// Sample is one raw 3-axis reading in sensor counts
type Sample struct {
	X, Y, Z int16
}

// Offsets are the per-axis zero offsets produced by calibration
type Offsets struct {
	X, Y, Z int32
}

// MotionSensor is the accelerometer/gyroscope boundary used by the Device
type MotionSensor interface {
	// Wake takes the sensor out of its power-on sleep mode
	Wake() error

	// ReadAccel returns the current acceleration sample
	ReadAccel() (Sample, error)

	// ReadGyro returns the current angular rate sample
	ReadGyro() (Sample, error)

	// ReadIdentity returns the device identity register
	ReadIdentity() (uint8, error)
}
