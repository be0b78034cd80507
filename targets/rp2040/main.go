//go:build rp2040

package main

import (
	_ "embed"
	"machine"
	"time"

	"cloooock/config"
	"cloooock/core"
	"cloooock/targets/pio"
)

//go:embed board.json
var boardJSON []byte

func main() {
	// Clear any watchdog state left from before the reset
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		halt(err)
	}

	cfg, err := config.LoadConfig(boardJSON)
	if err != nil {
		halt(err)
	}

	reporter, err := InitDebugUART(cfg.DebugBaud)
	if err != nil {
		halt(err)
	}
	core.SetDebugWriter(reporter.Log)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	core.SetGPIODriver(NewRPGPIODriver())

	tempo := core.NewTempo(cfg.InitialBPM).Clamp()
	barTicks := tempo.BarTicks()
	prescalers := cfg.Prescalers()
	channels := make([]*core.ClockChannel, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		driver := pio.NewChannelDriver(uint8(ch.LEDPin), uint8(ch.OutputPin), cfg.PIOOutputs)
		channels[i] = core.NewClockChannel(driver, prescalers[i], barTicks)
	}
	shared := core.NewShared(tempo, channels)

	pauseInput, err := core.ConfigureGPIOInput(core.GPIOPin(cfg.PauseButtonPin))
	if err != nil {
		halt(err)
	}
	encoderInput, err := core.ConfigureGPIOInput(core.GPIOPin(cfg.EncoderButtonPin))
	if err != nil {
		halt(err)
	}

	encoder, err := NewEncoder(cfg.Encoder)
	if err != nil {
		halt(err)
	}

	controller, err := core.NewController(shared, core.Peripherals{
		Encoder:       encoder,
		Display:       NewShiftDisplay(cfg.Display),
		PauseButton:   core.NewButton(pauseInput),
		EncoderButton: core.NewButton(encoderInput),
		Reporter:      reporter,
	})
	if err != nil {
		halt(err)
	}

	// Last: from here on the interrupt writes the tick counter
	if err := StartTickTimer(shared); err != nil {
		halt(err)
	}
	core.DebugAsync("cloooock running at " + core.Itoa(int(tempo.BPM)) + " bpm, tick " +
		core.Itoa(int(core.DefaultTimerConfig().ActualHz())) + " Hz")

	controller.Run(func() {
		// Yield to the debug worker
		time.Sleep(10 * time.Microsecond)
	})
}

// halt reports a startup failure and blinks the onboard LED forever
func halt(err error) {
	core.DebugPrintln("startup failed: " + err.Error())
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(400 * time.Millisecond)
	}
}
