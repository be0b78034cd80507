//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"cloooock/core"
)

// RP2040 TIMER peripheral. The runtime owns ALARM0 for sleeping; the tick
// interrupt uses ALARM1.
const (
	timerBase     = 0x40054000
	timerALARM1   = timerBase + 0x14
	timerTIMERAWL = timerBase + 0x28
	timerINTR     = timerBase + 0x34
	timerINTE     = timerBase + 0x38

	alarm1Bit = 1 << 1
)

var (
	alarm1    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM1)))
	rawLow    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	intRaw    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	intEnable = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))

	tickShared *core.Shared
	tickPeriod uint32
	tickNext   uint32
)

// StartTickTimer starts the TickRate interrupt feeding shared. Called last
// during startup: everything the interrupt touches must exist by then.
func StartTickTimer(shared *core.Shared) error {
	cfg := core.DefaultTimerConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	tickShared = shared
	tickPeriod = cfg.Period()

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, handleTick)
	intEnable.SetBits(alarm1Bit)
	intr.Enable()

	tickNext = rawLow.Get() + tickPeriod
	alarm1.Set(tickNext)
	return nil
}

// handleTick acknowledges the alarm, re-arms it one period after the
// previous deadline (not after now, so latency does not accumulate) and
// counts the tick
func handleTick(interrupt.Interrupt) {
	intRaw.Set(alarm1Bit)
	tickNext += tickPeriod
	alarm1.Set(tickNext)
	tickShared.Tick()
}
