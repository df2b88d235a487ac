//go:build rp2040

package main

import (
	"machine"
	"time"

	"posturemon/config"
	"posturemon/core"
)

// streamEscape lets Ctrl-C end telemetry streaming. Set at link time:
//
//	tinygo build -target=pico -ldflags="-X main.streamEscape=true" ./targets/rp2040
var streamEscape string

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg := config.DefaultPostureConfig()
	cfg.Telemetry.StreamEscape = config.BuildSwitch(streamEscape, cfg.Telemetry.StreamEscape)

	InitDebugUART(cfg)
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(debugEnabled)

	link := newSerialLink(InitUSB(), 2048)

	gpioDriver := NewRPGPIODriver()
	button, err := core.NewPinInput(gpioDriver, core.GPIOPin(cfg.Pins.Button))
	if err != nil {
		halt("button: " + err.Error())
	}
	led, err := core.NewPinOutput(gpioDriver, core.GPIOPin(cfg.Pins.LED))
	if err != nil {
		halt("led: " + err.Error())
	}

	var bus core.I2CBus
	if i2c, err := configureI2C(cfg); err != nil {
		// The device still runs; every sensor read will fail and be logged
		DebugPrintln("[INIT] I2C configure failed: " + err.Error())
	} else {
		bus = i2c
	}

	indicator, err := newIndicator(cfg)
	if err != nil {
		halt("indicator: " + err.Error())
	}

	dev, err := core.NewDevice(cfg, core.Board{
		Sensor:    core.NewMPU6050(bus, cfg.Bus.IMUAddress),
		Button:    button,
		LED:       led,
		Indicator: indicator,
		Link:      link,
	})
	if err != nil {
		halt("device: " + err.Error())
	}
	dev.Init()
	link.flush()

	tick := time.Duration(cfg.TickMS) * time.Millisecond
	for dev.Step() {
		link.flush()
		time.Sleep(tick)
	}
	link.flush()

	halt(dev.Snapshot().HaltReason)
}

// halt reports a fatal fault and parks the firmware; it never returns
func halt(reason string) {
	DebugPrintln("[FAULT] halted: " + reason)
	for {
		time.Sleep(time.Second)
	}
}

// newIndicator drives a WS2812 pixel, or a discrete RGB LED on PWM when no
// pixel pin is configured
func newIndicator(cfg *config.DeviceConfig) (core.Indicator, error) {
	if cfg.Pins.Neopixel != 0 {
		return NewNeopixel(machine.Pin(cfg.Pins.Neopixel)), nil
	}
	pins := [3]core.PWMPin{
		core.PWMPin(cfg.Pins.Indicator[0]),
		core.PWMPin(cfg.Pins.Indicator[1]),
		core.PWMPin(cfg.Pins.Indicator[2]),
	}
	return core.NewPWMIndicator(NewRP2040PWMDriver(), pins, 1000)
}
