// Command posture-sim runs the posture monitor core on the desktop. The
// console is stdin/stdout; lines starting with '!' drive the simulated
// hardware (!tilt, !press, !fail, !gyro).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"

	"posturemon/config"
	"posturemon/core"
	"posturemon/host/serial"
	"posturemon/host/sim"
)

var (
	configPath = flag.String("config", "", "Device profile (.yaml, .yml or .json)")
	escape     = flag.Bool("escape", true, "Let Ctrl-C (ETX) end streaming")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Telemetry.StreamEscape = cfg.Telemetry.StreamEscape || *escape

	core.SetDebugWriter(func(s string) { glog.Info(s) })
	core.SetDebugEnabled(bool(glog.V(1)))

	link := serial.NewStreamLink(os.Stdin, os.Stdout, 0)
	s, err := sim.New(cfg, link)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, s, link, time.Duration(cfg.TickMS)*time.Millisecond); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.DeviceConfig, error) {
	if *configPath == "" {
		return config.DefaultPostureConfig(), nil
	}
	return config.LoadFile(*configPath)
}

// run ticks the device until it halts, stdin closes or ctx is cancelled
func run(ctx context.Context, s *sim.Simulator, link *serial.StreamLink, tick time.Duration) error {
	s.Init()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			glog.Info("interrupted")
			return nil

		case <-link.Done():
			// Let the device consume what was queued before stdin closed
			for i := 0; link.Pending() > 0 && i < 1000; i++ {
				if !s.Step() {
					break
				}
			}
			glog.Infof("input closed: %v", link.Err())
			return nil

		case <-ticker.C:
			if !s.Step() {
				status := s.Device.Snapshot()
				return fmt.Errorf("device halted: %s", status.HaltReason)
			}
		}
	}
}
