package core

import (
	"sync"
	"testing"
)

func TestSharedTickFromInterruptGoroutine(t *testing.T) {
	shared := NewShared(DefaultTempo(), nil)

	const ticks = 20000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < ticks; i++ {
			shared.Tick()
		}
	}()

	// Main loop side: read-then-reset inside one critical section. Every
	// increment lands either before the read or after the reset.
	var seen uint32
	for i := 0; i < 1000; i++ {
		shared.Free(func(st *SharedState) {
			seen += st.Ticks
			st.Ticks = 0
		})
	}
	wg.Wait()
	seen += shared.Ticks()

	if seen != ticks {
		t.Errorf("Expected %d ticks observed, got %d", ticks, seen)
	}
}

func TestSharedFreeReleasesOnPanic(t *testing.T) {
	shared := NewShared(DefaultTempo(), nil)

	func() {
		defer func() { recover() }()
		shared.Free(func(st *SharedState) {
			panic("boom")
		})
	}()

	// Would deadlock on the host if the critical section was not left
	shared.Tick()
	if shared.Ticks() != 1 {
		t.Errorf("Expected 1 tick, got %d", shared.Ticks())
	}
}

func TestSharedTempo(t *testing.T) {
	shared := NewShared(NewTempo(90), nil)
	if shared.Tempo().BPM != 90 {
		t.Errorf("Expected 90 BPM, got %d", shared.Tempo().BPM)
	}
}
