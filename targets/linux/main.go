//go:build linux && !tinygo

// Command linux runs the posture monitor on a Raspberry Pi class board:
// MPU-6050 on I2C, button, LED and an RGB LED on GPIO, and the console on
// a serial port.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"posturemon/config"
	"posturemon/core"
	"posturemon/host/serial"
)

var (
	configPath = flag.String("config", "", "Device profile (.yaml, .yml or .json)")
	device     = flag.String("device", "", "Console serial device (overrides the profile)")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		glog.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultPostureConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return err
		}
	}
	if *device != "" {
		cfg.Bus.SerialDevice = *device
	}

	core.SetDebugWriter(func(s string) { glog.Info(s) })
	core.SetDebugEnabled(bool(glog.V(1)))

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.Bus.I2CBus)
	if err != nil {
		return fmt.Errorf("open I2C bus %q: %w", cfg.Bus.I2CBus, err)
	}
	defer bus.Close()

	gpioDriver := NewPeriphGPIODriver()
	button, err := core.NewPinInput(gpioDriver, core.GPIOPin(cfg.Pins.Button))
	if err != nil {
		return fmt.Errorf("button: %w", err)
	}
	led, err := core.NewPinOutput(gpioDriver, core.GPIOPin(cfg.Pins.LED))
	if err != nil {
		return fmt.Errorf("led: %w", err)
	}

	pins := [3]core.PWMPin{
		core.PWMPin(cfg.Pins.Indicator[0]),
		core.PWMPin(cfg.Pins.Indicator[1]),
		core.PWMPin(cfg.Pins.Indicator[2]),
	}
	indicator, err := core.NewPWMIndicator(NewPeriphPWMDriver(), pins, 1000)
	if err != nil {
		return fmt.Errorf("indicator: %w", err)
	}
	defer indicator.Close()

	serialCfg := serial.DefaultConfig(cfg.Bus.SerialDevice)
	serialCfg.Baud = int(cfg.Bus.UARTBaud)
	port, err := serial.Open(serialCfg)
	if err != nil {
		return err
	}
	defer port.Close()
	link := serial.NewPortLink(port)

	dev, err := core.NewDevice(cfg, core.Board{
		Sensor:    core.NewMPU6050(bus, cfg.Bus.IMUAddress),
		Button:    button,
		LED:       led,
		Indicator: indicator,
		Link:      link,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glog.Infof("%s on %s, I2C %q, tick %d ms", cfg.Name, cfg.Bus.SerialDevice, cfg.Bus.I2CBus, cfg.TickMS)
	dev.Init()

	ticker := time.NewTicker(time.Duration(cfg.TickMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			glog.Info("stop requested")
			return nil

		case <-link.Done():
			return fmt.Errorf("console link closed: %w", link.Err())

		case <-ticker.C:
			if dev.Step() {
				continue
			}
			// Halted: outputs stay in the fault state until we are stopped
			glog.Errorf("device halted: %s", dev.Snapshot().HaltReason)
			<-ctx.Done()
			return nil
		}
	}
}
