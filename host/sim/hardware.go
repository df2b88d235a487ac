package sim

import (
	"errors"
	"math"
	"sync"

	"posturemon/core"
)

// ErrInjected is returned by the simulated sensor while failures are on
var ErrInjected = errors.New("simulated bus failure")

// Pins is an in-memory GPIODriver. Inputs idle high (pull-up); a button
// press holds its pin low for a number of milliseconds.
type Pins struct {
	levels  map[core.GPIOPin]bool
	outputs map[core.GPIOPin]bool
	writes  map[core.GPIOPin]int
	held    map[core.GPIOPin]uint32
}

// NewPins returns a driver with nothing configured
func NewPins() *Pins {
	return &Pins{
		levels:  make(map[core.GPIOPin]bool),
		outputs: make(map[core.GPIOPin]bool),
		writes:  make(map[core.GPIOPin]int),
		held:    make(map[core.GPIOPin]uint32),
	}
}

func (p *Pins) ConfigureOutput(pin core.GPIOPin) error {
	p.outputs[pin] = true
	return nil
}

func (p *Pins) ConfigureInputPullUp(pin core.GPIOPin) error {
	if p.outputs[pin] {
		return errors.New("sim: pin already configured as output")
	}
	p.levels[pin] = true
	return nil
}

func (p *Pins) SetPin(pin core.GPIOPin, value bool) error {
	if !p.outputs[pin] {
		return errors.New("sim: pin not configured as output")
	}
	p.levels[pin] = value
	p.writes[pin]++
	return nil
}

func (p *Pins) ReadPin(pin core.GPIOPin) bool {
	if p.held[pin] > 0 {
		return false
	}
	return p.levels[pin]
}

// Press holds pin low for ms milliseconds of simulated time
func (p *Pins) Press(pin core.GPIOPin, ms uint32) {
	p.held[pin] = ms
}

// Pressed reports whether pin is currently held
func (p *Pins) Pressed(pin core.GPIOPin) bool {
	return p.held[pin] > 0
}

// Advance moves simulated time forward, releasing expired presses
func (p *Pins) Advance(ms uint32) {
	for pin, left := range p.held {
		if left <= ms {
			delete(p.held, pin)
		} else {
			p.held[pin] = left - ms
		}
	}
}

// Level returns the last value driven onto an output
func (p *Pins) Level(pin core.GPIOPin) bool {
	return p.levels[pin]
}

// Writes returns how many times pin has been driven
func (p *Pins) Writes(pin core.GPIOPin) int {
	return p.writes[pin]
}

// Sensor is a simulated accelerometer tipped forward by a settable angle
type Sensor struct {
	mu      sync.Mutex
	gravity float64
	tilt    float64
	failing bool
	gyro    core.Sample
}

// NewSensor returns an upright sensor reporting gravity counts on Z
func NewSensor(gravity int32) *Sensor {
	return &Sensor{gravity: float64(gravity)}
}

// SetTilt sets the angle from vertical in degrees
func (s *Sensor) SetTilt(deg float64) {
	s.mu.Lock()
	s.tilt = deg
	s.mu.Unlock()
}

// SetFailing makes every read fail until cleared
func (s *Sensor) SetFailing(on bool) {
	s.mu.Lock()
	s.failing = on
	s.mu.Unlock()
}

// SetGyro sets the angular rate returned by ReadGyro
func (s *Sensor) SetGyro(g core.Sample) {
	s.mu.Lock()
	s.gyro = g
	s.mu.Unlock()
}

func (s *Sensor) Wake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrInjected
	}
	return nil
}

func (s *Sensor) ReadAccel() (core.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return core.Sample{}, ErrInjected
	}
	rad := s.tilt * math.Pi / 180
	return core.Sample{
		X: int16(math.Round(s.gravity * math.Sin(rad))),
		Z: int16(math.Round(s.gravity * math.Cos(rad))),
	}, nil
}

func (s *Sensor) ReadGyro() (core.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return core.Sample{}, ErrInjected
	}
	return s.gyro, nil
}

func (s *Sensor) ReadIdentity() (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrInjected
	}
	return core.MPU6050Identity, nil
}

// Indicator records the colours it is asked to show
type Indicator struct {
	Color   core.Color
	Changes int
}

func (i *Indicator) SetColor(c core.Color) error {
	i.Color = c
	i.Changes++
	return nil
}
