package core

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.05
}

func TestTilt(t *testing.T) {
	tests := []struct {
		name string
		s    Sample
		o    Offsets
		want float32
	}{
		{"upright", Sample{Z: 16384}, Offsets{}, 0},
		{"on its side", Sample{X: 16384}, Offsets{}, 90},
		{"on the other side", Sample{Y: -16384}, Offsets{}, 90},
		{"upside down", Sample{Z: -16384}, Offsets{}, 180},
		{"45 degrees", Sample{X: 1000, Z: 1000}, Offsets{}, 45},
		{"offset corrected", Sample{X: 500, Y: -300, Z: 16400}, Offsets{X: 500, Y: -300, Z: 16}, 0},
		{"no signal", Sample{}, Offsets{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tilt(tt.s, tt.o); !near(got, tt.want) {
				t.Errorf("Tilt(%+v, %+v) = %v, want %v", tt.s, tt.o, got, tt.want)
			}
		})
	}
}

func TestTiltScaleInvariant(t *testing.T) {
	a := Tilt(Sample{X: 100, Y: 50, Z: 200}, Offsets{})
	b := Tilt(Sample{X: 1000, Y: 500, Z: 2000}, Offsets{})
	if !near(a, b) {
		t.Errorf("Scaled vectors gave %v and %v", a, b)
	}
}

func TestTiltRange(t *testing.T) {
	for _, s := range []Sample{
		{X: -32768, Y: -32768, Z: -32768},
		{X: 32767, Y: 32767, Z: 32767},
		{X: 1, Y: 0, Z: -32768},
	} {
		got := Tilt(s, Offsets{})
		if got < 0 || got > 180 {
			t.Errorf("Tilt(%+v) = %v outside [0,180]", s, got)
		}
	}
}

func TestClassifyTiltBoundaries(t *testing.T) {
	tests := []struct {
		tilt float32
		want AlertLevel
	}{
		{0, AlertNormal},
		{29.9, AlertNormal},
		{30, AlertWarning},
		{59.9, AlertWarning},
		{60, AlertAlert},
		{90, AlertAlert},
		{180, AlertAlert},
	}

	for _, tt := range tests {
		if got := ClassifyTilt(tt.tilt, 30, 60); got != tt.want {
			t.Errorf("ClassifyTilt(%v) = %v, want %v", tt.tilt, got, tt.want)
		}
	}
}
