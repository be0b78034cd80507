//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// On regular Go the timer interrupt is simulated by a goroutine, so masking it
// means holding this lock. Critical sections must not nest.
var interruptLock sync.Mutex

// disableInterrupts enters the critical section (regular Go implementation)
func disableInterrupts() State {
	interruptLock.Lock()
	return 0
}

// restoreInterrupts leaves the critical section (regular Go implementation)
func restoreInterrupts(state State) {
	interruptLock.Unlock()
}
