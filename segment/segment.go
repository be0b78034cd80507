// Package segment encodes numbers for a multiplexed seven-segment display
// driven through a chain of shift registers.
//
// The segments are mapped to bits in the low byte, following the common
// dp-g-f-e-d-c-b-a order:
//
//	 a
//	---
//	f|g|b
//	---
//	e| |c
//	---  .dp
//	 d
//
// The byte above the segments selects the digit, one bit per place with the
// units digit on the lowest bit.
package segment

import "cloooock/core"

const (
	SegA  byte = 1 << 0
	SegB  byte = 1 << 1
	SegC  byte = 1 << 2
	SegD  byte = 1 << 3
	SegE  byte = 1 << 4
	SegF  byte = 1 << 5
	SegG  byte = 1 << 6
	SegDP byte = 1 << 7
)

// MaxDigits is the number of places the select byte can address
const MaxDigits = 8

var font = [10]byte{
	SegA | SegB | SegC | SegD | SegE | SegF,        // 0
	SegB | SegC,                                   // 1
	SegA | SegB | SegG | SegE | SegD,              // 2
	SegA | SegB | SegG | SegC | SegD,              // 3
	SegF | SegG | SegB | SegC,                     // 4
	SegA | SegF | SegG | SegC | SegD,              // 5
	SegA | SegF | SegE | SegD | SegC | SegG,       // 6
	SegA | SegB | SegC,                            // 7
	SegA | SegB | SegC | SegD | SegE | SegF | SegG, // 8
	SegA | SegB | SegC | SegD | SegF | SegG,       // 9
}

// Digit returns the segment pattern for a decimal digit. Anything above 9
// renders as a dash.
func Digit(d uint8) byte {
	if d > 9 {
		return SegG
	}
	return font[d]
}

// Scanner paints a value one digit per call, cycling through the places.
// Called on every main loop iteration it keeps all digits lit.
type Scanner struct {
	digits      uint8
	commonAnode bool
	pos         uint8
}

// NewScanner creates a scanner for a display with the given number of digits
// (1 to MaxDigits). Common-cathode displays take active-high segments and an
// active-low digit select; commonAnode inverts both.
func NewScanner(digits uint8, commonAnode bool) *Scanner {
	switch {
	case digits == 0:
		digits = 1
	case digits > MaxDigits:
		digits = MaxDigits
	}
	return &Scanner{digits: digits, commonAnode: commonAnode}
}

// Digits returns the number of places
func (s *Scanner) Digits() uint8 {
	return s.digits
}

// Mask returns the shift register word that lights place pos of v.
// Leading zeros are blanked.
func (s *Scanner) Mask(v core.Displayable, pos uint8) uint32 {
	var segments byte
	if pos < core.DisplayWidth(v, s.digits) {
		segments = Digit(v.DisplayDigit(pos))
	}
	sel := byte(1) << pos

	if s.commonAnode {
		segments = ^segments
	} else {
		sel = ^sel
	}
	return uint32(sel)<<8 | uint32(segments)
}

// Next returns the mask for the next place and advances
func (s *Scanner) Next(v core.Displayable) uint32 {
	mask := s.Mask(v, s.pos)
	s.pos++
	if s.pos >= s.digits {
		s.pos = 0
	}
	return mask
}

// Text renders v as right-aligned decimal text over the given number of
// places, with leading zeros blanked
func Text(v core.Displayable, digits uint8) string {
	buf := make([]byte, digits)
	width := core.DisplayWidth(v, digits)
	for i := uint8(0); i < digits; i++ {
		place := digits - 1 - i
		if place < width {
			buf[i] = '0' + v.DisplayDigit(place)
		} else {
			buf[i] = ' '
		}
	}
	return string(buf)
}
