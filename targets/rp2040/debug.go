//go:build rp2040

package main

import (
	"machine"

	"cloooock/telemetry"
)

// The telemetry link uses UART0 on its default pins
var (
	debugUART = machine.UART0
	debugTX   = machine.GPIO0
	debugRX   = machine.GPIO1
)

// InitDebugUART configures the debug UART and returns the telemetry
// reporter writing to it
func InitDebugUART(baud uint32) (*telemetry.Reporter, error) {
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       debugTX,
		RX:       debugRX,
	})
	if err != nil {
		return nil, err
	}
	return telemetry.NewReporter(debugUART), nil
}
