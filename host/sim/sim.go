// Package sim runs the posture monitor core against simulated hardware so
// it can be driven from a terminal or a test.
package sim

import (
	"fmt"
	"strconv"
	"strings"

	"posturemon/config"
	"posturemon/core"
)

// ControlPrefix starts a line addressed to the simulator instead of the
// device
const ControlPrefix = '!'

// Simulator owns a Device wired to simulated hardware
type Simulator struct {
	cfg *config.DeviceConfig

	Pins      *Pins
	Sensor    *Sensor
	Indicator *Indicator
	Link      *ControlFilter
	Device    *core.Device

	button core.GPIOPin
	led    core.GPIOPin
}

// New builds a simulator whose device talks over link. Lines starting with
// '!' are intercepted before they reach the device's console.
func New(cfg *config.DeviceConfig, link core.Link) (*Simulator, error) {
	s := &Simulator{
		cfg:       cfg,
		Pins:      NewPins(),
		Sensor:    NewSensor(cfg.Calibration.Gravity),
		Indicator: &Indicator{},
		button:    core.GPIOPin(cfg.Pins.Button),
		led:       core.GPIOPin(cfg.Pins.LED),
	}
	s.Link = NewControlFilter(link, s.control)

	button, err := core.NewPinInput(s.Pins, s.button)
	if err != nil {
		return nil, fmt.Errorf("sim: button: %w", err)
	}
	led, err := core.NewPinOutput(s.Pins, s.led)
	if err != nil {
		return nil, fmt.Errorf("sim: led: %w", err)
	}

	s.Device, err = core.NewDevice(cfg, core.Board{
		Sensor:    s.Sensor,
		Button:    button,
		LED:       led,
		Indicator: s.Indicator,
		Link:      s.Link,
	})
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	return s, nil
}

// Init runs the device's boot sequence
func (s *Simulator) Init() {
	s.Device.Init()
}

// Step advances simulated time by one tick. It returns false once the
// device has halted.
func (s *Simulator) Step() bool {
	running := s.Device.Step()
	s.Pins.Advance(s.cfg.TickMS)
	return running
}

// Run steps n ticks or until the device halts
func (s *Simulator) Run(n int) bool {
	for i := 0; i < n; i++ {
		if !s.Step() {
			return false
		}
	}
	return true
}

// Press holds the button for ms milliseconds
func (s *Simulator) Press(ms uint32) {
	s.Pins.Press(s.button, ms)
}

// LED reports the level last driven onto the status LED
func (s *Simulator) LED() bool {
	return s.Pins.Level(s.led)
}

// control executes one '!' line and returns the reply
func (s *Simulator) control(line string) string {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "SIM: commands: !tilt <deg>, !press <ms>, !fail on|off, !gyro x y z"
	}

	switch args[0] {
	case "tilt":
		if len(args) != 2 {
			return "SIM: usage: !tilt <deg>"
		}
		deg, err := strconv.ParseFloat(args[1], 64)
		if err != nil || deg < -180 || deg > 180 {
			return "SIM: invalid angle"
		}
		s.Sensor.SetTilt(deg)
		return "SIM: tilt=" + strconv.FormatFloat(deg, 'f', 1, 64)

	case "press":
		if len(args) != 2 {
			return "SIM: usage: !press <ms>"
		}
		ms, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return "SIM: invalid duration"
		}
		s.Press(uint32(ms))
		return "SIM: press " + args[1] + "ms"

	case "fail":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			return "SIM: usage: !fail on|off"
		}
		s.Sensor.SetFailing(args[1] == "on")
		return "SIM: sensor failures " + args[1]

	case "gyro":
		if len(args) != 4 {
			return "SIM: usage: !gyro x y z"
		}
		var v [3]int16
		for i := range v {
			n, err := strconv.ParseInt(args[i+1], 10, 16)
			if err != nil {
				return "SIM: invalid rate"
			}
			v[i] = int16(n)
		}
		s.Sensor.SetGyro(core.Sample{X: v[0], Y: v[1], Z: v[2]})
		return "SIM: gyro set"
	}
	return "SIM: unknown control " + strconv.Quote(args[0])
}
