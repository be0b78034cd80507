package core

// LevelInput is a raw digital input. machine.Pin satisfies it directly.
type LevelInput interface {
	Get() bool
}

// Button turns an active-low level input (pull-up, switch to ground) into
// press events. A press is reported on the falling edge between two samples;
// the polling period is the only debounce.
type Button struct {
	input    LevelInput
	previous bool
}

// NewButton creates a button. The first sample is taken immediately so a
// button held down at power-on does not report a press.
func NewButton(input LevelInput) *Button {
	return &Button{
		input:    input,
		previous: input.Get(),
	}
}

// Pressed samples the input and reports whether it went from high to low
// since the last sample
func (b *Button) Pressed() bool {
	level := b.input.Get()
	pressed := b.previous && !level
	b.previous = level
	return pressed
}
