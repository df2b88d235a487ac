package core

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"posturemon/config"
)

var errFake = errors.New("bus timeout")

type fakeSensor struct {
	accel, gyro Sample
	id          uint8

	accelErr, gyroErr, wakeErr, idErr error

	wakes      int
	accelReads int
}

func (s *fakeSensor) Wake() error {
	s.wakes++
	return s.wakeErr
}

func (s *fakeSensor) ReadAccel() (Sample, error) {
	s.accelReads++
	if s.accelErr != nil {
		return Sample{}, s.accelErr
	}
	return s.accel, nil
}

func (s *fakeSensor) ReadGyro() (Sample, error) {
	if s.gyroErr != nil {
		return Sample{}, s.gyroErr
	}
	return s.gyro, nil
}

func (s *fakeSensor) ReadIdentity() (uint8, error) {
	if s.idErr != nil {
		return 0, s.idErr
	}
	return s.id, nil
}

type fakeButton struct {
	level Level
}

func (b *fakeButton) Level() Level { return b.level }

type fakeLED struct {
	writes []bool
	err    error
}

func (l *fakeLED) Set(on bool) error {
	if l.err != nil {
		return l.err
	}
	l.writes = append(l.writes, on)
	return nil
}

func (l *fakeLED) count(on bool) int {
	n := 0
	for _, w := range l.writes {
		if w == on {
			n++
		}
	}
	return n
}

type fakeIndicator struct {
	colors []Color
}

func (i *fakeIndicator) SetColor(c Color) error {
	i.colors = append(i.colors, c)
	return nil
}

func (i *fakeIndicator) last() Color {
	if len(i.colors) == 0 {
		return ColorOff
	}
	return i.colors[len(i.colors)-1]
}

type fakeLink struct {
	in    []byte
	out   bytes.Buffer
	reads int
}

func (l *fakeLink) TryReadByte() (byte, bool) {
	if len(l.in) == 0 {
		return 0, false
	}
	b := l.in[0]
	l.in = l.in[1:]
	l.reads++
	return b, true
}

func (l *fakeLink) Write(p []byte) (int, error) {
	return l.out.Write(p)
}

func (l *fakeLink) send(s string) {
	l.in = append(l.in, s...)
}

// take returns and clears everything written so far
func (l *fakeLink) take() string {
	s := l.out.String()
	l.out.Reset()
	return s
}

type testBoard struct {
	sensor    *fakeSensor
	button    *fakeButton
	led       *fakeLED
	indicator *fakeIndicator
	link      *fakeLink
}

func (b *testBoard) board() Board {
	return Board{
		Sensor:    b.sensor,
		Button:    b.button,
		LED:       b.led,
		Indicator: b.indicator,
		Link:      b.link,
	}
}

// newTestDevice builds an initialised device on fakes, with the banner
// already consumed. tweak may adjust the default profile.
func newTestDevice(t *testing.T, tweak func(*config.DeviceConfig)) (*Device, *testBoard) {
	t.Helper()

	cfg := config.DefaultPostureConfig()
	if tweak != nil {
		tweak(cfg)
	}
	tb := &testBoard{
		sensor:    &fakeSensor{id: MPU6050Identity, accel: Sample{Z: 16384}},
		button:    &fakeButton{level: High},
		led:       &fakeLED{},
		indicator: &fakeIndicator{},
		link:      &fakeLink{},
	}
	d, err := NewDevice(cfg, tb.board())
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	d.Init()
	tb.link.take()
	tb.led.writes = nil
	tb.indicator.colors = nil
	return d, tb
}

// ticks runs n control loop iterations
func ticks(d *Device, n int) {
	for i := 0; i < n; i++ {
		d.Tick()
	}
}

// holdButton presses the button for ms milliseconds, then releases it and
// runs one more tick so the release settles
func holdButton(d *Device, tb *testBoard, ms int) {
	tb.button.level = Low
	ticks(d, ms/10)
	tb.button.level = High
	ticks(d, 2)
}

// tiltSample returns a 1 g sample leaning deg degrees from +Z toward +X
func tiltSample(deg float64) Sample {
	rad := deg * math.Pi / 180
	return Sample{
		X: int16(math.Round(16384 * math.Sin(rad))),
		Z: int16(math.Round(16384 * math.Cos(rad))),
	}
}

// command types line plus CR into the link and runs one tick
func command(d *Device, tb *testBoard, line string) string {
	tb.link.send(line + "\r\n")
	d.Tick()
	return tb.link.take()
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\r\n"), "\r\n")
}
