//go:build rp2040

package pio

import (
	"device/rp"
	"machine"
)

// SIOChannel drives a channel's two pins through the single-cycle I/O block.
// Both pins change in the same GPIO_OUT_XOR write.
type SIOChannel struct {
	ledMask uint32
	outMask uint32
}

// NewSIOChannel configures led and out as outputs, driven low
func NewSIOChannel(led, out uint8) *SIOChannel {
	for _, pin := range [2]machine.Pin{machine.Pin(led), machine.Pin(out)} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	return &SIOChannel{
		ledMask: 1 << led,
		outMask: 1 << out,
	}
}

// Write sets the indicator and output levels. Only the main loop writes a
// channel's pins, so reading GPIO_OUT first does not race.
func (c *SIOChannel) Write(led, out bool) {
	mask := xorMask(rp.SIO.GPIO_OUT.Get(), c.ledMask, c.outMask, led, out)
	if mask != 0 {
		rp.SIO.GPIO_OUT_XOR.Set(mask)
	}
}
