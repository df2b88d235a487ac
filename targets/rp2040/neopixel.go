//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"posturemon/core"
)

// Neopixel is a single WS2812 pixel used as the status indicator
type Neopixel struct {
	dev ws2812.Device
	buf [1]color.RGBA
}

// NewNeopixel configures pin and returns a dark pixel
func NewNeopixel(pin machine.Pin) *Neopixel {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Neopixel{dev: ws2812.New(pin)}
}

// SetColor latches c into the pixel
func (n *Neopixel) SetColor(c core.Color) error {
	n.buf[0] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	return n.dev.WriteColors(n.buf[:])
}
