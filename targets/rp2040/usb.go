//go:build rp2040

package main

import (
	"machine"
)

// InitUSB configures the console port. With the default TinyGo build this
// is USB CDC-ACM; with -serial=uart it is UART0.
func InitUSB() machine.Serialer {
	// Errors here leave the port unconfigured; nothing else can report them
	_ = machine.Serial.Configure(machine.UARTConfig{})
	return machine.Serial
}
