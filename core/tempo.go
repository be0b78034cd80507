package core

// Tempo limits
const (
	DefaultBPM = 120
	MinBPM     = 30
	MaxBPM     = 9999
)

// Tempo is the master beats-per-minute value
type Tempo struct {
	BPM uint16
}

// NewTempo creates a tempo with the given BPM
func NewTempo(bpm uint16) Tempo {
	return Tempo{BPM: bpm}
}

// DefaultTempo returns a tempo of DefaultBPM
func DefaultTempo() Tempo {
	return Tempo{BPM: DefaultBPM}
}

// Adjust returns the tempo moved by delta, saturated to [0, MaxBPM]
func (t Tempo) Adjust(delta int8) Tempo {
	bpm := int32(t.BPM) + int32(delta)
	switch {
	case bpm < 0:
		bpm = 0
	case bpm > MaxBPM:
		bpm = MaxBPM
	}
	return Tempo{BPM: uint16(bpm)}
}

// CanAdjust reports whether the operator may move the tempo in the direction
// of delta. Decrements are refused at MinBPM and increments at MaxBPM.
func (t Tempo) CanAdjust(delta int8) bool {
	switch {
	case delta < 0:
		return t.BPM > MinBPM
	case delta > 0:
		return t.BPM < MaxBPM
	}
	return false
}

// Clamp limits the tempo to [MinBPM, MaxBPM]
func (t Tempo) Clamp() Tempo {
	switch {
	case t.BPM < MinBPM:
		return Tempo{BPM: MinBPM}
	case t.BPM > MaxBPM:
		return Tempo{BPM: MaxBPM}
	}
	return t
}

// BarTicks returns the length of one bar in ticks at this tempo.
// A zero tempo is treated as MinBPM.
func (t Tempo) BarTicks() uint32 {
	bpm := uint32(t.BPM)
	if bpm == 0 {
		bpm = MinBPM
	}
	return (240 / 2 * TickRate) / bpm
}

// DisplayDigit returns the decimal digit of the BPM at place index
func (t Tempo) DisplayDigit(index uint8) uint8 {
	return Number(t.BPM).DisplayDigit(index)
}
