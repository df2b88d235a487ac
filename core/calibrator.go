package core

import "posturemon/config"

// Calibrator averages a fixed number of accelerometer samples into zero
// offsets. The device is assumed to be held flat, so Z should read 1 g.
type Calibrator struct {
	target  int
	gravity int32

	sumX, sumY, sumZ int32
	count            int
}

// NewCalibrator creates an idle calibrator
func NewCalibrator(cfg config.CalibrationConfig) Calibrator {
	return Calibrator{target: cfg.Samples, gravity: cfg.Gravity}
}

// Begin discards any partial run. Calling it twice is harmless.
func (c *Calibrator) Begin() {
	c.sumX, c.sumY, c.sumZ = 0, 0, 0
	c.count = 0
}

// Accumulate adds one sample. It returns the offsets and true exactly on the
// call that completes the run, after which the calibrator is reset.
func (c *Calibrator) Accumulate(s Sample) (Offsets, bool) {
	c.sumX += int32(s.X)
	c.sumY += int32(s.Y)
	c.sumZ += int32(s.Z)
	c.count++

	if c.count < c.target {
		return Offsets{}, false
	}

	n := int32(c.target)
	off := Offsets{
		X: c.sumX / n,
		Y: c.sumY / n,
		Z: c.sumZ/n - c.gravity,
	}
	c.Begin()
	return off, true
}

// Count returns the samples collected in the current run
func (c *Calibrator) Count() int {
	return c.count
}

// Target returns the number of samples per run
func (c *Calibrator) Target() int {
	return c.target
}
