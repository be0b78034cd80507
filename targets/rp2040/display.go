//go:build rp2040

package main

import (
	"machine"

	"cloooock/config"
	"cloooock/core"
	"cloooock/segment"
	"tinygo.org/x/drivers/shiftregister"
)

// ShiftDisplay multiplexes a seven-segment display behind two 74HC595s:
// segments on the first byte, digit selects on the second. Each Update
// lights the next digit.
type ShiftDisplay struct {
	dev     *shiftregister.Device
	scanner *segment.Scanner
}

func NewShiftDisplay(cfg config.DisplayConfig) *ShiftDisplay {
	dev := shiftregister.New(
		shiftregister.SIXTEEN_BITS,
		machine.Pin(cfg.LatchPin),
		machine.Pin(cfg.ClockPin),
		machine.Pin(cfg.DataPin),
	)
	dev.Configure()
	return &ShiftDisplay{
		dev:     dev,
		scanner: segment.NewScanner(cfg.Digits, cfg.CommonAnode),
	}
}

func (d *ShiftDisplay) Update(value core.Displayable) {
	d.dev.WriteMask(d.scanner.Next(value))
}
