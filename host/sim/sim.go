// Package sim runs the clock engine on the host: a goroutine stands in for
// the timer interrupt, the keyboard for the encoder and buttons, and the
// console for the display and jacks.
package sim

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"cloooock/config"
	"cloooock/core"
)

// Options configures a simulation
type Options struct {
	Speed    uint32              // Time multiplier for the simulated timer
	Edges    bool                // Print every output edge
	Reporter core.StatusReporter // Optional telemetry sink
}

// Sim is a fully wired device
type Sim struct {
	cfg        *config.DeviceConfig
	opts       Options
	out        io.Writer
	outMu      sync.Mutex
	start      time.Time
	gpio       *GPIO
	keyboard   *Keyboard
	display    *Display
	shared     *core.Shared
	controller *core.Controller
	outputs    map[core.GPIOPin]int
	status     statusTap
}

// statusTap keeps the last reported status for the dashboard and forwards
// it to the configured reporter
type statusTap struct {
	mu       sync.Mutex
	last     core.Status
	reported bool
	next     core.StatusReporter
}

func (t *statusTap) ReportStatus(s core.Status) {
	t.mu.Lock()
	t.last = s
	t.reported = true
	t.mu.Unlock()
	if t.next != nil {
		t.next.ReportStatus(s)
	}
}

// Last returns the most recent status and whether there is one
func (t *statusTap) Last() (core.Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.reported
}

func pinOf(pin uint32) core.GPIOPin {
	return core.GPIOPin(pin)
}

// New builds the device described by cfg. Console output goes to out.
func New(cfg *config.DeviceConfig, opts Options, out io.Writer) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Sim{
		cfg:     cfg,
		opts:    opts,
		out:     out,
		start:   time.Now(),
		outputs: make(map[core.GPIOPin]int),
	}
	s.status.next = opts.Reporter
	s.gpio = NewGPIO(s.edge)
	core.SetGPIODriver(s.gpio)

	tempo := core.NewTempo(cfg.InitialBPM).Clamp()
	barTicks := tempo.BarTicks()

	prescalers := cfg.Prescalers()
	channels := make([]*core.ClockChannel, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		pair, err := core.ConfigureGPIOPair(pinOf(ch.LEDPin), pinOf(ch.OutputPin))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i+1, err)
		}
		s.outputs[pinOf(ch.OutputPin)] = i
		channels[i] = core.NewClockChannel(pair, prescalers[i], barTicks)
	}
	s.shared = core.NewShared(tempo, channels)

	pause, err := core.ConfigureGPIOInput(pinOf(cfg.PauseButtonPin))
	if err != nil {
		return nil, fmt.Errorf("pause button: %w", err)
	}
	encoderButton, err := core.ConfigureGPIOInput(pinOf(cfg.EncoderButtonPin))
	if err != nil {
		return nil, fmt.Errorf("encoder button: %w", err)
	}

	s.keyboard = NewKeyboard(s.gpio, cfg.PauseButtonPin, cfg.EncoderButtonPin)
	s.display = NewDisplay(out, cfg.Display.Digits)

	s.controller, err = core.NewController(s.shared, core.Peripherals{
		Encoder:       core.NewPositionEncoder(s.keyboard, cfg.Encoder.Invert),
		Display:       s.display,
		PauseButton:   core.NewButton(pause),
		EncoderButton: core.NewButton(encoderButton),
		Reporter:      &s.status,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// edge prints output jack transitions. It runs inside the controller's
// critical section, so it must not touch the shared state.
func (s *Sim) edge(pin core.GPIOPin, level bool) {
	ch, ok := s.outputs[pin]
	if !ok || !s.opts.Edges {
		return
	}
	arrow := "v"
	if level {
		arrow = "^"
	}
	s.printf("%10.4fs ch%d %s\n", time.Since(s.start).Seconds(), ch+1, arrow)
}

func (s *Sim) printf(format string, args ...interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// Run starts the simulated timer and input, then runs the controller until
// ctx is done or the keyboard asks to quit. The timer starts last, after
// every part of the device exists.
func (s *Sim) Run(ctx context.Context, input io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- s.keyboard.Run(input)
		cancel()
	}()

	go RunTimer(ctx, s.shared.Tick, s.opts.Speed)
	s.loop(ctx)

	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}

// loop runs the controller until ctx is done
func (s *Sim) loop(ctx context.Context) {
	for ctx.Err() == nil {
		s.controller.Iterate()
		time.Sleep(50 * time.Microsecond)
	}
}

// ChannelLevels returns the indicator and output level of every channel
func (s *Sim) ChannelLevels() (leds, outs []bool) {
	s.shared.Free(func(st *core.SharedState) {
		for _, ch := range st.Channels {
			leds = append(leds, ch.LED())
			outs = append(outs, ch.State())
		}
	})
	return leds, outs
}

// LastStatus returns the most recent status the controller reported
func (s *Sim) LastStatus() (core.Status, bool) {
	return s.status.Last()
}

// Keyboard returns the simulated operator input
func (s *Sim) Keyboard() *Keyboard { return s.keyboard }

// Controller returns the device controller
func (s *Sim) Controller() *core.Controller { return s.controller }

// Shared returns the interrupt-shared state
func (s *Sim) Shared() *core.Shared { return s.shared }

// Display returns the console display
func (s *Sim) Display() *Display { return s.display }

// GPIO returns the simulated pins
func (s *Sim) GPIO() *GPIO { return s.gpio }

// PrintHelp writes the key bindings
func PrintHelp(out io.Writer) {
	fmt.Fprintln(out, "Keys:")
	fmt.Fprintln(out, "  + / -    turn encoder one detent")
	fmt.Fprintln(out, "  ] / [    turn encoder ten detents")
	fmt.Fprintln(out, "  p        pause button")
	fmt.Fprintln(out, "  e, space encoder button")
	fmt.Fprintln(out, "  q        quit")
}
