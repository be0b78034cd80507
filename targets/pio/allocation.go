// Package pio drives the clock channels of an RP2040 board. Each channel's
// indicator and jack are changed in one register write, either by a PIO
// state machine or through the SIO XOR register.
package pio

import "errors"

const (
	PIOBlocks        = 2 // PIO0, PIO1
	MachinesPerBlock = 4
)

var ErrNoStateMachine = errors.New("pio: no free state machine")

// allocator hands out PIO state machines round-robin across the blocks
type allocator struct {
	used    [PIOBlocks][MachinesPerBlock]bool
	nextPIO uint8
	nextSM  uint8
}

var machines allocator

// allocate reserves a state machine and returns its block and index
func (a *allocator) allocate() (uint8, uint8, error) {
	for i := 0; i < PIOBlocks*MachinesPerBlock; i++ {
		pioNum, smNum := a.nextPIO, a.nextSM

		a.nextSM++
		if a.nextSM >= MachinesPerBlock {
			a.nextSM = 0
			a.nextPIO = (a.nextPIO + 1) % PIOBlocks
		}

		if !a.used[pioNum][smNum] {
			a.used[pioNum][smNum] = true
			return pioNum, smNum, nil
		}
	}
	return 0, 0, ErrNoStateMachine
}

func (a *allocator) reset() {
	*a = allocator{}
}

// Allocations returns which state machines are in use
func Allocations() [PIOBlocks][MachinesPerBlock]bool {
	return machines.used
}

// ResetAllocations releases every state machine
func ResetAllocations() {
	machines.reset()
}

// pinWord packs a channel's levels for a 2-pin OUT: bit 0 drives the LED
// pin, bit 1 the output pin right after it
func pinWord(led, out bool) uint32 {
	var word uint32
	if led {
		word |= 1
	}
	if out {
		word |= 2
	}
	return word
}

// xorMask returns the SIO XOR mask moving the pins in current to the wanted
// levels, touching only the bits in ledMask and outMask
func xorMask(current, ledMask, outMask uint32, led, out bool) uint32 {
	var want uint32
	if led {
		want |= ledMask
	}
	if out {
		want |= outMask
	}
	return (current ^ want) & (ledMask | outMask)
}

// Consecutive reports whether a channel's pins can be driven by one PIO
// state machine
func Consecutive(led, out uint8) bool {
	return out == led+1
}
