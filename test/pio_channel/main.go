//go:build rp2040

package main

// Channel driver bring-up: runs every channel of the reference board at a
// fixed subdivision of 120 BPM, without the controller, encoder or display.
// Compare the jacks on a scope: the edges of all four must line up.

import (
	"machine"
	"time"

	"cloooock/config"
	"cloooock/core"
	"cloooock/targets/pio"
)

var patterns = []struct {
	usePIO bool
	name   string
}{
	{true, "PIO"},
	{false, "SIO"},
}

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	cfg := config.DefaultConfig()
	barTicks := core.DefaultTempo().BarTicks()

	for {
		for _, pattern := range patterns {
			println("=== Channel test:", pattern.name, "===")
			pio.ResetAllocations()

			prescalers := cfg.Prescalers()
			channels := make([]*core.ClockChannel, len(cfg.Channels))
			for i, ch := range cfg.Channels {
				driver := pio.NewChannelDriver(uint8(ch.LEDPin), uint8(ch.OutputPin), pattern.usePIO)
				channels[i] = core.NewClockChannel(driver, prescalers[i], barTicks)
			}

			// Four bars, ticks paced by sleeping one tick period
			led.High()
			period := time.Duration(core.TicksToUS(1)) * time.Microsecond
			var ticks uint32
			for bar := 0; bar < 4; bar++ {
				for ticks = 0; ticks < barTicks; ticks++ {
					for _, ch := range channels {
						ch.Update(ticks)
					}
					time.Sleep(period)
				}
			}
			led.Low()

			println("  bars done, last tick", ticks)
			time.Sleep(time.Second)
		}
	}
}
