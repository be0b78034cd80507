// Package telemetry defines the messages the firmware sends over its debug
// link and the reporter that emits them.
package telemetry

import (
	"errors"
	"strconv"
	"strings"

	"cloooock/core"
	"cloooock/protocol"
)

// Message IDs
const (
	MsgStatus uint16 = 1
	MsgLog    uint16 = 2
)

// MaxLogLength is the longest log text that fits in one frame
// (message ID and length prefix take one byte each)
const MaxLogLength = protocol.MessagePayloadMax - 2

var (
	ErrUnknownMessage = errors.New("telemetry: unknown message")
	ErrChannelCount   = errors.New("telemetry: channel count out of range")
)

// EncodeStatus writes the arguments of a status message
func EncodeStatus(output protocol.OutputBuffer, s core.Status) {
	protocol.EncodeVLQUint(output, uint32(s.BPM))
	protocol.EncodeVLQUint(output, uint32(s.Mode))
	protocol.EncodeVLQUint(output, uint32(s.Selected))
	protocol.EncodeVLQUint(output, s.BarTicks)
	protocol.EncodeVLQUint(output, s.Panics)
	protocol.EncodeVLQUint(output, uint32(s.Count))
	for i := uint8(0); i < s.Count && i < core.MaxChannels; i++ {
		protocol.EncodeVLQUint(output, uint32(s.Channels[i].Numerator))
		protocol.EncodeVLQUint(output, uint32(s.Channels[i].Denominator))
	}
}

// DecodeStatus parses the arguments of a status message
func DecodeStatus(data *[]byte) (core.Status, error) {
	var s core.Status
	var fields [6]uint32
	for i := range fields {
		v, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return s, err
		}
		fields[i] = v
	}
	if fields[5] > core.MaxChannels {
		return s, ErrChannelCount
	}

	s.BPM = uint16(fields[0])
	s.Mode = core.DeviceState(fields[1])
	s.Selected = uint8(fields[2])
	s.BarTicks = fields[3]
	s.Panics = fields[4]
	s.Count = uint8(fields[5])
	for i := uint8(0); i < s.Count; i++ {
		num, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return s, err
		}
		den, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return s, err
		}
		s.Channels[i] = core.ChannelStatus{Numerator: uint16(num), Denominator: uint16(den)}
	}
	return s, nil
}

// FormatStatus renders a status as one line of text
func FormatStatus(s core.Status) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(s.BPM)))
	b.WriteString(" bpm ")
	b.WriteString(s.Mode.String())
	b.WriteString(" sel=")
	b.WriteString(strconv.Itoa(int(s.Selected) + 1))
	b.WriteString(" bar=")
	b.WriteString(strconv.FormatUint(uint64(s.BarTicks), 10))
	for i := uint8(0); i < s.Count && i < core.MaxChannels; i++ {
		b.WriteString(" ch")
		b.WriteString(strconv.Itoa(int(i) + 1))
		b.WriteString("=")
		b.WriteString(strconv.Itoa(int(s.Channels[i].Numerator)))
		b.WriteString("/")
		b.WriteString(strconv.Itoa(int(s.Channels[i].Denominator)))
	}
	if s.Panics > 0 {
		b.WriteString(" panics=")
		b.WriteString(strconv.FormatUint(uint64(s.Panics), 10))
	}
	return b.String()
}

// Handler receives decoded telemetry
type Handler interface {
	HandleStatus(s core.Status)
	HandleLog(msg string)
}

// Dispatch decodes one message and forwards it to h. It has the signature of
// a protocol.MessageHandler once bound with a closure.
func Dispatch(h Handler, msg protocol.Message) error {
	data := msg.Payload
	switch msg.ID {
	case MsgStatus:
		s, err := DecodeStatus(&data)
		if err != nil {
			return err
		}
		h.HandleStatus(s)
	case MsgLog:
		text, err := protocol.DecodeVLQString(&data)
		if err != nil {
			return err
		}
		h.HandleLog(text)
	default:
		return ErrUnknownMessage
	}
	return nil
}

// NewMessageHandler returns a protocol.MessageHandler dispatching to h
func NewMessageHandler(h Handler) protocol.MessageHandler {
	return func(msg protocol.Message) error {
		return Dispatch(h, msg)
	}
}
