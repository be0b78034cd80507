//go:build rp2040

package main

import (
	"machine"

	"cloooock/config"
	"cloooock/core"
	"tinygo.org/x/drivers/encoders"
)

// NewEncoder sets up the quadrature encoder on its pin-change interrupts
// and returns it as a detent counter
func NewEncoder(cfg config.EncoderConfig) (core.Encoder, error) {
	enc := encoders.NewQuadratureViaInterrupt(
		machine.Pin(cfg.PinA),
		machine.Pin(cfg.PinB),
	)
	err := enc.Configure(encoders.QuadratureConfig{
		Precision: cfg.Precision,
	})
	if err != nil {
		return nil, err
	}
	return core.NewPositionEncoder(enc, cfg.Invert), nil
}
