package core

// SharedState is the data reachable from both the timer interrupt and the
// main loop. It is only handed out inside a critical section.
type SharedState struct {
	Ticks    uint32 // Written by the timer interrupt, reset by the main loop
	Tempo    Tempo
	Channels []*ClockChannel
}

// Shared guards SharedState with the interrupt mask. The timer interrupt and
// the controller each receive the same *Shared explicitly.
type Shared struct {
	state SharedState
}

// NewShared builds the shared state. It must be fully constructed before the
// timer interrupt is enabled.
func NewShared(tempo Tempo, channels []*ClockChannel) *Shared {
	return &Shared{
		state: SharedState{
			Tempo:    tempo,
			Channels: channels,
		},
	}
}

// Free runs fn with the timer interrupt masked. fn must be short and must not
// call Free or Tick.
func (s *Shared) Free(fn func(st *SharedState)) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn(&s.state)
}

// Tick is the timer interrupt body: one increment, nothing else
func (s *Shared) Tick() {
	state := disableInterrupts()
	s.state.Ticks++
	restoreInterrupts(state)
}

// Ticks returns the current tick count
func (s *Shared) Ticks() uint32 {
	var ticks uint32
	s.Free(func(st *SharedState) {
		ticks = st.Ticks
	})
	return ticks
}

// Tempo returns the current tempo
func (s *Shared) Tempo() Tempo {
	var tempo Tempo
	s.Free(func(st *SharedState) {
		tempo = st.Tempo
	})
	return tempo
}
