package protocol

import (
	"io"
	"sync"
	"time"
)

// MessageHandler is called for every decoded message
type MessageHandler func(msg Message) error

// Receiver decodes telemetry frames from a byte stream. It resynchronizes
// on the sync byte after garbage or a corrupt frame, and counts the frames
// lost in between from the sequence numbers.
type Receiver struct {
	mu             sync.Mutex
	input          *FifoBuffer
	handler        MessageHandler
	isSynchronized bool
	haveSequence   bool
	nextSequence   uint8

	frames  uint32
	dropped uint32
	corrupt uint32
}

// NewReceiver creates a Receiver dispatching to handler
func NewReceiver(handler MessageHandler) *Receiver {
	return &Receiver{
		input:          NewFifoBuffer(4 * MessageLengthMax),
		handler:        handler,
		isSynchronized: true,
	}
}

// Feed appends raw bytes from the link and processes every complete frame
func (r *Receiver) Feed(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(data) > 0 {
		n := r.input.Write(data)
		data = data[n:]
		r.Receive(r.input)
		if n == 0 && len(data) > 0 {
			// Full buffer without a frame in it: garbage
			r.input.Reset()
			r.isSynchronized = false
		}
	}
}

// Receive processes the frames held by input and pops what it consumed
func (r *Receiver) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !r.isSynchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}

			if syncPos >= 0 {
				data = data[syncPos+1:]
				r.isSynchronized = true
			} else {
				data = nil
			}
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			r.desync()
			data = data[1:]
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			r.desync()
			data = data[1:]
			continue
		}

		// Wait for full frame
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			r.desync()
			data = data[1:]
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			r.desync()
			data = data[1:]
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]

		r.track(seq)
		r.dispatch(seq, payload)
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

// track counts the frames missing between the previous sequence and seq
func (r *Receiver) track(seq uint8) {
	r.frames++
	if r.haveSequence && seq != r.nextSequence {
		r.dropped += uint32((seq - r.nextSequence) & MessageSeqMask)
	}
	r.haveSequence = true
	r.nextSequence = MessageDest | ((seq + 1) & MessageSeqMask)
}

func (r *Receiver) desync() {
	r.isSynchronized = false
	r.corrupt++
}

// dispatch decodes every message of a frame and hands it to the handler
func (r *Receiver) dispatch(seq uint8, frame []byte) {
	if r.handler == nil || len(frame) == 0 {
		return
	}
	msgID, err := DecodeVLQUint(&frame)
	if err != nil {
		r.corrupt++
		return
	}
	_ = r.handler(Message{Sequence: seq, ID: uint16(msgID), Payload: frame})
}

// Run reads from port until it returns an error. io.EOF ends the loop
// without error.
func (r *Receiver) Run(port io.Reader) error {
	buffer := make([]byte, 256)
	for {
		n, err := port.Read(buffer)
		if n > 0 {
			r.Feed(buffer[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			// Serial read timeout
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Stats returns the number of frames received, lost and rejected
func (r *Receiver) Stats() (frames, dropped, corrupt uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, r.dropped, r.corrupt
}
