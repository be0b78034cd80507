package telemetry

import (
	"io"
	"sync/atomic"

	"cloooock/core"
	"cloooock/protocol"
)

// Reporter sends status and log messages over the debug link. It
// implements core.StatusReporter, and Log can be installed with
// core.SetDebugWriter.
type Reporter struct {
	sender *protocol.Sender
	errors atomic.Uint32
}

// NewReporter creates a Reporter writing frames to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{sender: protocol.NewSender(w)}
}

func (r *Reporter) ReportStatus(s core.Status) {
	err := r.sender.SendMessage(MsgStatus, func(output protocol.OutputBuffer) {
		EncodeStatus(output, s)
	})
	if err != nil {
		r.errors.Add(1)
	}
}

// Log sends msg as a log message, cut to MaxLogLength
func (r *Reporter) Log(msg string) {
	if len(msg) > MaxLogLength {
		msg = msg[:MaxLogLength]
	}
	err := r.sender.SendMessage(MsgLog, func(output protocol.OutputBuffer) {
		protocol.EncodeVLQString(output, msg)
	})
	if err != nil {
		r.errors.Add(1)
	}
}

// Errors returns the number of messages that could not be written
func (r *Reporter) Errors() uint32 {
	return r.errors.Load()
}
