package protocol

import (
	"errors"
	"io"
	"sync"
)

var ErrFrameTooLarge = errors.New("frame exceeds maximum length")

// Sender encodes telemetry frames onto a byte stream. Every frame carries
// the next sequence number in 0x10-0x1F so a receiver can count lost frames.
type Sender struct {
	mu       sync.Mutex
	w        io.Writer
	sequence uint8
	output   ScratchOutput
}

// NewSender creates a Sender writing to w
func NewSender(w io.Writer) *Sender {
	return &Sender{w: w}
}

// EncodeFrame builds one frame from frameData and writes it in a single
// Write call
func (s *Sender) EncodeFrame(frameData func(output OutputBuffer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.output.Reset()
	seq := MessageDest | (s.sequence & MessageSeqMask)
	s.output.Output([]byte{0, seq})

	frameData(&s.output)

	// Scratch output stops at MessageMax, so a full buffer means the payload
	// did not fit
	changed := s.output.CurPosition()
	if changed+MessageTrailerSize > MessageLengthMax {
		return ErrFrameTooLarge
	}
	s.output.Update(MessagePositionLen, uint8(changed+MessageTrailerSize))

	crc := CRC16(s.output.Result())
	s.output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	s.sequence++
	_, err := s.w.Write(s.output.Result())
	return err
}

// SendMessage sends a message with arguments
func (s *Sender) SendMessage(msgID uint16, args func(output OutputBuffer)) error {
	return s.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(msgID))
		if args != nil {
			args(output)
		}
	})
}

// Sequence returns the sequence number of the next frame
func (s *Sender) Sequence() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MessageDest | (s.sequence & MessageSeqMask)
}
