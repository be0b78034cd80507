// Package monitor decodes the telemetry stream of a running module
package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"

	"cloooock/core"
	"cloooock/host/serial"
	"cloooock/protocol"
	"cloooock/telemetry"
)

// Monitor prints the status and log messages arriving on a port
type Monitor struct {
	port     io.ReadCloser
	receiver *protocol.Receiver
	out      io.Writer
	verbose  bool

	mu       sync.Mutex
	last     core.Status
	statuses uint32
	logs     uint32
}

// New creates a Monitor reading port and printing to out. With verbose set
// every status frame is printed, otherwise only changes.
func New(port io.ReadCloser, out io.Writer, verbose bool) *Monitor {
	m := &Monitor{
		port:    port,
		out:     out,
		verbose: verbose,
	}
	m.receiver = protocol.NewReceiver(telemetry.NewMessageHandler(m))
	return m
}

// Connect opens the serial device and returns a Monitor on it
func Connect(cfg *serial.Config, out io.Writer, verbose bool) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return New(port, out, verbose), nil
}

// Run decodes until the port is closed or fails
func (m *Monitor) Run() error {
	return m.receiver.Run(m.port)
}

func (m *Monitor) Close() error {
	return m.port.Close()
}

func (m *Monitor) HandleStatus(s core.Status) {
	m.mu.Lock()
	changed := m.statuses == 0 || s != m.last
	m.last = s
	m.statuses++
	m.mu.Unlock()

	if changed || m.verbose {
		fmt.Fprintf(m.out, "%s status %s\n", timestamp(), telemetry.FormatStatus(s))
	}
}

func (m *Monitor) HandleLog(msg string) {
	m.mu.Lock()
	m.logs++
	m.mu.Unlock()
	fmt.Fprintf(m.out, "%s log    %s\n", timestamp(), msg)
}

// Last returns the most recent status and whether one has arrived
func (m *Monitor) Last() (core.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.statuses > 0
}

// PrintSummary writes the message and link error counts
func (m *Monitor) PrintSummary() {
	frames, dropped, corrupt := m.receiver.Stats()
	m.mu.Lock()
	statuses, logs := m.statuses, m.logs
	m.mu.Unlock()

	fmt.Fprintf(m.out, "\nFrames:  %d (%d status, %d log)\n", frames, statuses, logs)
	fmt.Fprintf(m.out, "Dropped: %d\n", dropped)
	fmt.Fprintf(m.out, "Corrupt: %d\n", corrupt)
}

func timestamp() string {
	return time.Now().Format("15:04:05.000")
}
