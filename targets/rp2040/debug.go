//go:build rp2040

package main

import (
	"machine"

	"posturemon/config"
)

var (
	debugUART    *machine.UART
	debugEnabled bool
)

// InitDebugUART sends debug output to UART0 on the configured pins, so it
// never mixes with the console
func InitDebugUART(cfg *config.DeviceConfig) {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: cfg.Bus.UARTBaud,
		TX:       machine.Pin(cfg.Pins.UARTTX),
		RX:       machine.Pin(cfg.Pins.UARTRX),
	})
	if err != nil {
		debugEnabled = false
		return
	}
	debugEnabled = true

	DebugPrintln("=== " + cfg.Name + " debug UART ===")
}

// DebugPrintln writes one line to the debug UART
func DebugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
