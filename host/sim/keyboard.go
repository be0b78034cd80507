package sim

import (
	"bufio"
	"io"
	"sync/atomic"
)

// Key bindings
const (
	KeyUp         = '+'
	KeyUpAlt      = '='
	KeyDown       = '-'
	KeyFastUp     = ']'
	KeyFastDown   = '['
	KeyPause      = 'p'
	KeyEncoder    = 'e'
	KeyEncoderAlt = ' '
	KeyQuit       = 'q'
	FastDetents   = 10
)

// Keyboard turns key presses into encoder detents and button presses. It is
// the encoder's core.PositionSource.
type Keyboard struct {
	position      atomic.Int64
	gpio          *GPIO
	pauseButton   uint32
	encoderButton uint32
}

func NewKeyboard(gpio *GPIO, pauseButton, encoderButton uint32) *Keyboard {
	return &Keyboard{
		gpio:          gpio,
		pauseButton:   pauseButton,
		encoderButton: encoderButton,
	}
}

// Position returns the accumulated detent count
func (k *Keyboard) Position() int {
	return int(k.position.Load())
}

// Handle applies one key and reports whether it asks to quit
func (k *Keyboard) Handle(key byte) bool {
	switch key {
	case KeyUp, KeyUpAlt:
		k.position.Add(1)
	case KeyDown:
		k.position.Add(-1)
	case KeyFastUp:
		k.position.Add(FastDetents)
	case KeyFastDown:
		k.position.Add(-FastDetents)
	case KeyPause:
		_ = k.gpio.Press(pinOf(k.pauseButton))
	case KeyEncoder, KeyEncoderAlt:
		_ = k.gpio.Press(pinOf(k.encoderButton))
	case KeyQuit:
		return true
	}
	return false
}

// Run reads keys from r until quit or end of input
func (k *Keyboard) Run(r io.Reader) error {
	in := bufio.NewReader(r)
	for {
		key, err := in.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if k.Handle(key) {
			return nil
		}
	}
}
