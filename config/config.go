// Package config holds the pin map and power-on settings of the clock module
package config

import (
	"encoding/json"
	"errors"

	"cloooock/core"
)

var (
	ErrNoChannels      = errors.New("config: no channels")
	ErrTooManyChannels = errors.New("config: more channels than the hardware has")
	ErrPinConflict     = errors.New("config: pin assigned twice")
	ErrTempoRange      = errors.New("config: initial tempo out of range")
	ErrDisplayDigits   = errors.New("config: display digits out of range")
	ErrPrecision       = errors.New("config: encoder precision must be 1, 2 or 4")
)

// ChannelConfig describes one clock output
type ChannelConfig struct {
	LEDPin      uint32 `json:"led_pin"`
	OutputPin   uint32 `json:"output_pin"`
	Numerator   uint16 `json:"numerator"`
	Denominator uint16 `json:"denominator"`
}

// EncoderConfig describes the quadrature encoder
type EncoderConfig struct {
	PinA      uint32 `json:"pin_a"`
	PinB      uint32 `json:"pin_b"`
	Precision int    `json:"precision"` // Quadrature transitions per detent
	Invert    bool   `json:"invert"`
}

// DisplayConfig describes the shift-register driven seven-segment display
type DisplayConfig struct {
	LatchPin    uint32 `json:"latch_pin"`
	ClockPin    uint32 `json:"clock_pin"`
	DataPin     uint32 `json:"data_pin"`
	Digits      uint8  `json:"digits"`
	CommonAnode bool   `json:"common_anode"`
}

// DeviceConfig is the complete module configuration
type DeviceConfig struct {
	InitialBPM       uint16          `json:"initial_bpm"`
	Channels         []ChannelConfig `json:"channels"`
	PauseButtonPin   uint32          `json:"pause_button_pin"`
	EncoderButtonPin uint32          `json:"encoder_button_pin"`
	Encoder          EncoderConfig   `json:"encoder"`
	Display          DisplayConfig   `json:"display"`
	DebugBaud        uint32          `json:"debug_baud"`
	PIOOutputs       bool            `json:"pio_outputs"` // LED and output on consecutive pins, driven by PIO
}

// LoadConfig parses a JSON configuration and returns a validated DeviceConfig
func LoadConfig(jsonData []byte) (*DeviceConfig, error) {
	var config DeviceConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *DeviceConfig) {
	if config.InitialBPM == 0 {
		config.InitialBPM = core.DefaultBPM
	}
	for i := range config.Channels {
		if config.Channels[i].Numerator == 0 {
			config.Channels[i].Numerator = 1
		}
		if config.Channels[i].Denominator == 0 {
			config.Channels[i].Denominator = 1
		}
	}
	if config.Encoder.Precision == 0 {
		config.Encoder.Precision = 4
	}
	if config.Display.Digits == 0 {
		config.Display.Digits = 4
	}
	if config.DebugBaud == 0 {
		config.DebugBaud = 115200
	}
}

// Validate checks the configuration against the hardware limits
func (c *DeviceConfig) Validate() error {
	switch {
	case len(c.Channels) == 0:
		return ErrNoChannels
	case len(c.Channels) > core.MaxChannels:
		return ErrTooManyChannels
	case c.InitialBPM < core.MinBPM || c.InitialBPM > core.MaxBPM:
		return ErrTempoRange
	case c.Display.Digits > 8:
		return ErrDisplayDigits
	case c.Encoder.Precision != 1 && c.Encoder.Precision != 2 && c.Encoder.Precision != 4:
		return ErrPrecision
	}

	used := make(map[uint32]bool)
	claim := func(pin uint32) error {
		if used[pin] {
			return ErrPinConflict
		}
		used[pin] = true
		return nil
	}
	pins := []uint32{
		c.PauseButtonPin, c.EncoderButtonPin,
		c.Encoder.PinA, c.Encoder.PinB,
		c.Display.LatchPin, c.Display.ClockPin, c.Display.DataPin,
	}
	for _, ch := range c.Channels {
		pins = append(pins, ch.LEDPin, ch.OutputPin)
	}
	for _, pin := range pins {
		if err := claim(pin); err != nil {
			return err
		}
	}
	return nil
}

// Prescalers returns the initial prescaler of every channel
func (c *DeviceConfig) Prescalers() []core.Prescaler {
	prescalers := make([]core.Prescaler, len(c.Channels))
	for i, ch := range c.Channels {
		prescalers[i] = core.NewPrescaler(ch.Numerator, ch.Denominator)
	}
	return prescalers
}

// DefaultConfig returns the pin map of the reference board (RP2040, four
// channels on whole, half, quarter and eighth notes)
func DefaultConfig() *DeviceConfig {
	return &DeviceConfig{
		InitialBPM: core.DefaultBPM,
		Channels: []ChannelConfig{
			{LEDPin: 2, OutputPin: 3, Numerator: 1, Denominator: 1},
			{LEDPin: 4, OutputPin: 5, Numerator: 1, Denominator: 2},
			{LEDPin: 6, OutputPin: 7, Numerator: 1, Denominator: 4},
			{LEDPin: 8, OutputPin: 9, Numerator: 1, Denominator: 8},
		},
		PauseButtonPin:   14,
		EncoderButtonPin: 15,
		Encoder: EncoderConfig{
			PinA:      16,
			PinB:      17,
			Precision: 4,
		},
		Display: DisplayConfig{
			LatchPin: 18,
			ClockPin: 19,
			DataPin:  20,
			Digits:   4,
		},
		DebugBaud:  115200,
		PIOOutputs: true,
	}
}
