package core

import "math"

// Tilt returns the angle in degrees between the offset-corrected
// acceleration vector and the +Z axis, in [0, 180]. With the device at rest
// this is how far it leans from its calibrated upright.
func Tilt(s Sample, o Offsets) float32 {
	x := float64(int32(s.X) - o.X)
	y := float64(int32(s.Y) - o.Y)
	z := float64(int32(s.Z) - o.Z)

	h := math.Sqrt(x*x + y*y)
	return float32(math.Atan2(h, z) * 180 / math.Pi)
}

// ClassifyTilt maps a tilt angle to an alert level. Thresholds are
// inclusive lower bounds of the more severe level.
func ClassifyTilt(tilt, warning, alert float32) AlertLevel {
	switch {
	case tilt < warning:
		return AlertNormal
	case tilt < alert:
		return AlertWarning
	default:
		return AlertAlert
	}
}
