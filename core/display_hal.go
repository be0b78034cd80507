package core

// Displayable is a value the numeric display can paint
type Displayable interface {
	// DisplayDigit returns the decimal digit at place index (0 = units)
	DisplayDigit(index uint8) uint8
}

// Display paints a Displayable. Multiplexed displays paint one digit per call,
// so Update is called on every loop iteration.
type Display interface {
	Update(value Displayable)
}

// Number is a plain displayable integer (channel index, denominator)
type Number uint16

// DisplayDigit returns the decimal digit at place index
func (n Number) DisplayDigit(index uint8) uint8 {
	v := uint16(n)
	for i := uint8(0); i < index; i++ {
		v /= 10
		if v == 0 {
			return 0
		}
	}
	return uint8(v % 10)
}

// DisplayWidth returns the number of significant decimal digits of v (at least 1)
func DisplayWidth(v Displayable, maxDigits uint8) uint8 {
	width := uint8(1)
	for i := uint8(1); i < maxDigits; i++ {
		if v.DisplayDigit(i) != 0 {
			width = i + 1
		}
	}
	return width
}
