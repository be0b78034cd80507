package core

import "errors"

// StatusInterval is the number of loop iterations after which an unchanged
// status is reported again
const StatusInterval = 50000

var (
	ErrNoChannels      = errors.New("at least one clock channel is required")
	ErrTooManyChannels = errors.New("too many clock channels")
	ErrMissingDevice   = errors.New("encoder, display and both buttons are required")
)

// Peripherals are the controller's input and output collaborators
type Peripherals struct {
	Encoder       Encoder
	Display       Display
	PauseButton   *Button
	EncoderButton *Button
	Reporter      StatusReporter // Optional
}

// Controller is the main loop: it reads the operator inputs, runs the mode
// machine, keeps the channel intervals in step with the tempo and feeds the
// channels from the shared tick counter.
type Controller struct {
	shared *Shared
	periph Peripherals

	mode         DeviceState
	selected     uint8
	channelCount uint8
	barTicks     uint32

	panics     uint32
	lastStatus Status
	statusAge  uint32
	reported   bool
}

// NewController creates the controller for shared. The channel intervals are
// computed for the current tempo and every channel starts a bar, output high.
func NewController(shared *Shared, periph Peripherals) (*Controller, error) {
	if periph.Encoder == nil || periph.Display == nil || periph.PauseButton == nil || periph.EncoderButton == nil {
		return nil, ErrMissingDevice
	}

	c := &Controller{
		shared: shared,
		periph: periph,
		mode:   Running,
	}

	var err error
	shared.Free(func(st *SharedState) {
		switch {
		case len(st.Channels) == 0:
			err = ErrNoChannels
			return
		case len(st.Channels) > MaxChannels:
			err = ErrTooManyChannels
			return
		}
		c.channelCount = uint8(len(st.Channels))
		c.barTicks = st.Tempo.BarTicks()
		for _, ch := range st.Channels {
			ch.CalculateThreshold(c.barTicks)
		}
	})
	if err != nil {
		return nil, err
	}

	// Power-on starts a bar the same way every later bar starts
	c.resync()
	return c, nil
}

// Mode returns the current UI mode
func (c *Controller) Mode() DeviceState { return c.mode }

// Selected returns the selected channel index
func (c *Controller) Selected() uint8 { return c.selected }

// BarTicks returns the bar length the channel intervals were computed for
func (c *Controller) BarTicks() uint32 { return c.barTicks }

// Panics returns the number of loop iterations that recovered from a panic
func (c *Controller) Panics() uint32 { return c.panics }

// Run drives the controller forever. idle, if not nil, runs between
// iterations (the targets use it to yield to other goroutines).
func (c *Controller) Run(idle func()) {
	for {
		c.Iterate()
		if idle != nil {
			idle()
		}
	}
}

// Iterate runs one loop iteration and recovers from a panic in it, so a bad
// iteration never takes the outputs down with it
func (c *Controller) Iterate() {
	defer func() {
		if r := recover(); r != nil {
			c.panics++
			RecordTiming(EvtPanic, 0, 0, c.panics, 0)
			DebugAsync("controller: recovered from panic")
		}
	}()
	c.Step()
}

// Step runs one loop iteration
func (c *Controller) Step() {
	if c.periph.PauseButton.Pressed() {
		c.press(PauseButtonPressed)
	}
	if c.periph.EncoderButton.Pressed() {
		c.press(EncoderButtonPressed)
	}

	if step, ok := c.periph.Encoder.Poll(); ok && step != 0 {
		c.turn(step)
	}

	c.refreshThresholds()

	if c.mode.Scheduling() {
		c.schedule()
	}

	c.periph.Display.Update(c.displayValue())
	c.report()
}

// press applies a button event to the mode machine and performs the side
// effects of entering the new mode
func (c *Controller) press(button ButtonPressed) {
	from := c.mode
	c.mode = from.Transition(button)
	RecordTiming(EvtMode, c.selected, 0, uint32(from), uint32(c.mode))
	DebugAsync("mode " + from.String() + " -> " + c.mode.String())

	switch {
	case c.mode == Running && from != Running:
		c.resync()
	case c.mode.Selecting():
		c.showSelection()
	}
}

// turn applies an encoder movement according to the current mode
func (c *Controller) turn(step int8) {
	switch c.mode {
	case Running, Paused:
		c.shared.Free(func(st *SharedState) {
			if !st.Tempo.CanAdjust(step) {
				return
			}
			st.Tempo = st.Tempo.Adjust(step).Clamp()
		})

	case SelectingChannel:
		n := int(c.channelCount)
		c.selected = uint8(((int(c.selected)+int(step))%n + n) % n)
		RecordTiming(EvtSelect, c.selected, 0, uint32(c.selected), 0)
		c.showSelection()

	case SettingDivision:
		change, count := int8(1), int(step)
		if step < 0 {
			change, count = -1, -count
		}
		c.shared.Free(func(st *SharedState) {
			ch := st.Channels[c.selected]
			for i := 0; i < count; i++ {
				ch.UpdateDenominator(change, c.barTicks)
			}
			RecordTiming(EvtDenominator, c.selected, st.Ticks, uint32(ch.Denominator()), ch.ThresholdInterval())
		})
	}
}

// refreshThresholds recomputes every channel interval when the bar length
// has changed since the last iteration
func (c *Controller) refreshThresholds() {
	c.shared.Free(func(st *SharedState) {
		barTicks := st.Tempo.BarTicks()
		if barTicks == c.barTicks {
			return
		}
		c.barTicks = barTicks
		for _, ch := range st.Channels {
			ch.CalculateThreshold(barTicks)
		}
		RecordTiming(EvtTempo, 0, st.Ticks, uint32(st.Tempo.BPM), barTicks)
	})
}

// schedule wraps the tick counter at the bar boundary and feeds every
// channel. The interrupt is held off for the whole read-wrap-update sequence,
// so an increment arriving meanwhile lands after the wrap instead of being lost.
func (c *Controller) schedule() {
	c.shared.Free(func(st *SharedState) {
		if st.Ticks >= c.barTicks {
			overshoot := st.Ticks % c.barTicks
			RecordTiming(EvtBarReset, 0, st.Ticks, c.barTicks, overshoot)
			st.Ticks = overshoot
		}
		for _, ch := range st.Channels {
			ch.Update(st.Ticks)
		}
	})
}

// resync restarts the bar: tick counter to zero, every channel back to the
// start of its schedule with the output high
func (c *Controller) resync() {
	c.shared.Free(func(st *SharedState) {
		st.Ticks = 0
		for _, ch := range st.Channels {
			ch.ResetThreshold()
		}
	})
	RecordTiming(EvtResync, 0, 0, c.barTicks, 0)
}

// showSelection lights only the selected channel's indicator
func (c *Controller) showSelection() {
	c.shared.Free(func(st *SharedState) {
		for i, ch := range st.Channels {
			ch.SetLED(uint8(i) == c.selected)
		}
	})
}

// displayValue returns what the display shows in the current mode
func (c *Controller) displayValue() Displayable {
	switch c.mode {
	case SelectingChannel:
		return Number(c.selected + 1)
	case SettingDivision:
		var denominator uint16
		c.shared.Free(func(st *SharedState) {
			denominator = st.Channels[c.selected].Denominator()
		})
		return Number(denominator)
	}
	return c.shared.Tempo()
}

// Status returns a snapshot of the device
func (c *Controller) Status() Status {
	s := Status{
		Mode:     c.mode,
		Selected: c.selected,
		BarTicks: c.barTicks,
		Panics:   c.panics,
		Count:    c.channelCount,
	}
	c.shared.Free(func(st *SharedState) {
		s.BPM = st.Tempo.BPM
		for i, ch := range st.Channels {
			s.Channels[i] = ChannelStatus{
				Numerator:   ch.Numerator(),
				Denominator: ch.Denominator(),
			}
		}
	})
	return s
}

// report sends the status when it changed, or when it has not been sent for
// StatusInterval iterations
func (c *Controller) report() {
	if c.periph.Reporter == nil {
		return
	}
	c.statusAge++
	s := c.Status()
	if c.reported && s == c.lastStatus && c.statusAge < StatusInterval {
		return
	}
	c.periph.Reporter.ReportStatus(s)
	c.lastStatus = s
	c.statusAge = 0
	c.reported = true
}
