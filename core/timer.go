package core

import "errors"

// TickRate is the timer interrupt rate in Hz. One tick is the smallest unit of
// time the clock engine knows about.
const TickRate = 10000

var ErrTimerConfig = errors.New("timer cannot reach the requested rate")

// TimerConfig describes a hardware timer driven from a fixed input clock
type TimerConfig struct {
	ClockHz  uint32 // Timer input clock
	TargetHz uint32 // Desired interrupt rate
	Prescale uint32 // Input clock divisor
}

// DefaultTimerConfig returns the configuration for a 1MHz microsecond timer
// (RP2040 TIMER peripheral) firing at TickRate
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		ClockHz:  1000000,
		TargetHz: TickRate,
		Prescale: 1,
	}
}

// CalcOverflow returns the compare value for a timer that counts from zero and
// fires on match, i.e. F = clockHz / (prescale * (1 + overflow)).
// Returns 0 when the inputs cannot produce a valid value.
func CalcOverflow(clockHz, targetHz, prescale uint32) uint32 {
	if targetHz == 0 || prescale == 0 {
		return 0
	}
	counts := clockHz / targetHz / prescale
	if counts == 0 {
		return 0
	}
	return counts - 1
}

// Validate reports whether the timer can generate the target rate
func (c TimerConfig) Validate() error {
	if c.TargetHz == 0 || c.Prescale == 0 || c.ClockHz/c.TargetHz/c.Prescale < 2 {
		return ErrTimerConfig
	}
	return nil
}

// Overflow returns the compare value for this configuration
func (c TimerConfig) Overflow() uint32 {
	return CalcOverflow(c.ClockHz, c.TargetHz, c.Prescale)
}

// Period returns the number of input clock counts between interrupts
func (c TimerConfig) Period() uint32 {
	return (c.Overflow() + 1) * c.Prescale
}

// ActualHz returns the interrupt rate the timer really produces after integer
// truncation of the compare value
func (c TimerConfig) ActualHz() uint32 {
	period := c.Period()
	if period == 0 {
		return 0
	}
	return c.ClockHz / period
}

// TicksToUS converts ticks to microseconds
func TicksToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TickRate)
}
