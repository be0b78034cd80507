//go:build rp2040

package pio

import (
	"machine"

	"cloooock/core"
	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildChannelProgram creates the two-instruction pin latch:
//
//	.wrap_target
//	pull block
//	out pins, 2
//	.wrap
func buildChannelProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestPins, 2).Encode(), // 1: out pins, 2
	}
}

// The program is shared by every state machine of a block
var programOffsets [PIOBlocks]struct {
	loaded bool
	offset uint8
}

func blockOf(pioNum uint8) *rp2pio.PIO {
	if pioNum == 0 {
		return rp2pio.PIO0
	}
	return rp2pio.PIO1
}

// loadProgram adds the channel program to a block once
func loadProgram(pioNum uint8) (uint8, error) {
	entry := &programOffsets[pioNum]
	if entry.loaded {
		return entry.offset, nil
	}
	offset, err := blockOf(pioNum).AddProgram(buildChannelProgram(), -1)
	if err != nil {
		return 0, err
	}
	entry.loaded = true
	entry.offset = offset
	return offset, nil
}

// PIOChannel drives a channel whose output pin directly follows its LED pin.
// A Write is one FIFO word; the state machine latches both pins with a
// single OUT instruction.
type PIOChannel struct {
	sm     rp2pio.StateMachine
	ledPin machine.Pin
	pioNum uint8
	smNum  uint8
}

// NewPIOChannel claims a state machine and starts it on led and led+1
func NewPIOChannel(led uint8) (*PIOChannel, error) {
	pioNum, smNum, err := machines.allocate()
	if err != nil {
		return nil, err
	}
	offset, err := loadProgram(pioNum)
	if err != nil {
		return nil, err
	}

	block := blockOf(pioNum)
	c := &PIOChannel{
		sm:     block.StateMachine(smNum),
		ledPin: machine.Pin(led),
		pioNum: pioNum,
		smNum:  smNum,
	}
	c.sm.TryClaim()

	c.ledPin.Configure(machine.PinConfig{Mode: block.PinMode()})
	(c.ledPin + 1).Configure(machine.PinConfig{Mode: block.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(c.ledPin, 2)
	// Shift right, no autopull, 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	// Pin directions must be set after Init
	c.sm.Init(offset, cfg)
	c.sm.SetPindirsConsecutive(c.ledPin, 2, true)
	c.sm.SetPinsConsecutive(c.ledPin, 2, false)
	c.sm.SetEnabled(true)

	return c, nil
}

// Write queues the new pin levels. Edges are at least one tick apart, far
// slower than the state machine drains its FIFO, so the wait is short.
func (c *PIOChannel) Write(led, out bool) {
	for c.sm.IsTxFIFOFull() {
	}
	c.sm.TxPut(pinWord(led, out))
}

// NewChannelDriver returns the best driver for a channel: PIO when the pins
// are consecutive and usePIO is set and a state machine is free, SIO
// otherwise
func NewChannelDriver(led, out uint8, usePIO bool) core.ChannelDriver {
	if usePIO && Consecutive(led, out) {
		if c, err := NewPIOChannel(led); err == nil {
			return c
		}
		core.DebugAsync("pio: falling back to SIO for pin " + core.Itoa(int(led)))
	}
	return NewSIOChannel(led, out)
}
