package core

// Encoder reports rotary encoder motion since the last poll.
// ok is false when the encoder has not moved. Poll never blocks.
type Encoder interface {
	Poll() (step int8, ok bool)
}

// PositionSource is an encoder driver that keeps an absolute position
// (tinygo.org/x/drivers/encoders.QuadratureDevice)
type PositionSource interface {
	Position() int
}

// PositionEncoder adapts a PositionSource to Encoder by reporting the change
// in position between polls
type PositionEncoder struct {
	source PositionSource
	last   int
	invert bool
}

// NewPositionEncoder wraps source. invert swaps the turning direction.
func NewPositionEncoder(source PositionSource, invert bool) *PositionEncoder {
	return &PositionEncoder{
		source: source,
		last:   source.Position(),
		invert: invert,
	}
}

// Poll returns the movement since the last poll, limited to the int8 range
func (e *PositionEncoder) Poll() (int8, bool) {
	pos := e.source.Position()
	delta := pos - e.last
	if delta == 0 {
		return 0, false
	}
	e.last = pos
	if e.invert {
		delta = -delta
	}
	switch {
	case delta > 127:
		delta = 127
	case delta < -128:
		delta = -128
	}
	return int8(delta), true
}
