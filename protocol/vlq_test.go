package protocol

import (
	"testing"
)

func TestVLQEncodeDecodeInt(t *testing.T) {
	testCases := []int32{
		0,
		1,
		-1,
		31,
		32,
		95,
		96,
		-32,
		-33,
		127,
		-127,
		1000,
		-1000,
		65535,
		-65535,
		1000000,
		-1000000,
	}

	for _, expected := range testCases {
		encoded := EncodeVLQ(expected)

		data := encoded
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}

		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}

		if len(data) != 0 {
			t.Errorf("VLQ decode didn't consume all bytes for value %d: %d bytes remaining", expected, len(data))
		}
	}
}

func TestVLQEncodeDecodeUint(t *testing.T) {
	// Tempo, bar lengths and counters as they appear in status frames
	testCases := []uint32{
		0,
		30,
		120,
		9999,
		10000,
		40000,
		65535,
		0xFFFFFFFF,
	}

	for _, expected := range testCases {
		output := NewScratchOutput()
		EncodeVLQUint(output, expected)

		data := output.Result()
		decoded, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}

		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d", expected, decoded)
		}
	}
}

func TestVLQEncodedLength(t *testing.T) {
	testCases := []struct {
		value    int32
		expected int
	}{
		{0, 1},
		{95, 1},
		{96, 2},
		{-32, 1},
		{-33, 2},
		{10000, 2},
		{40000, 3},
		{-1, 1},
	}

	for _, tc := range testCases {
		if n := len(EncodeVLQ(tc.value)); n != tc.expected {
			t.Errorf("VLQ length of %d: expected %d, got %d", tc.value, tc.expected, n)
		}
	}
}

func TestVLQString(t *testing.T) {
	testCases := []string{
		"",
		"mode Running -> Paused",
		"controller: recovered from panic",
	}

	for _, expected := range testCases {
		output := NewScratchOutput()
		EncodeVLQString(output, expected)

		data := output.Result()
		decoded, err := DecodeVLQString(&data)
		if err != nil {
			t.Errorf("Failed to decode string '%s': %v", expected, err)
			continue
		}

		if decoded != expected {
			t.Errorf("String mismatch: expected '%s', got '%s'", expected, decoded)
		}
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // Continuation byte but no following byte
	_, err := DecodeVLQInt(&data)
	if err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = []byte{0x05, 'a', 'b'}
	if _, err := DecodeVLQString(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for short string, got %v", err)
	}
}

func TestVLQTooLong(t *testing.T) {
	data := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}
