// Package protocol implements the framing of the telemetry link: small
// CRC-protected frames carrying VLQ-encoded messages, Klipper style.
package protocol

// Frame layout: [len][seq][payload...][crc16 hi][crc16 lo][sync]
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the size of a frame scratch buffer
	MessageMax = MessageLengthMax
)

// Message is one decoded frame
type Message struct {
	Sequence uint8
	ID       uint16
	Payload  []byte // Arguments after the message ID
}
