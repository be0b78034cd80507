// Clock channels
// A channel divides the bar into a rational number of intervals and toggles
// its output at each interval boundary.
package core

// Denominator limits. Stepping past either end wraps to the other.
const (
	MinDenominator = 1
	MaxDenominator = 128
)

// Prescaler is a channel's subdivision of one bar: the output toggles every
// Numerator/Denominator of a bar.
type Prescaler struct {
	Numerator   uint16
	Denominator uint16
}

// NewPrescaler creates a prescaler. Values outside the valid range are
// pulled back in so the interval division can never divide by zero.
func NewPrescaler(numerator, denominator uint16) Prescaler {
	p := Prescaler{}
	p.SetNumerator(numerator)
	p.SetDenominator(denominator)
	return p
}

// SetNumerator sets the numerator (minimum 1)
func (p *Prescaler) SetNumerator(numerator uint16) {
	if numerator == 0 {
		numerator = 1
	}
	p.Numerator = numerator
}

// SetDenominator sets the denominator, clamped to [MinDenominator, MaxDenominator]
func (p *Prescaler) SetDenominator(denominator uint16) {
	switch {
	case denominator < MinDenominator:
		denominator = MinDenominator
	case denominator > MaxDenominator:
		denominator = MaxDenominator
	}
	p.Denominator = denominator
}

// StepDenominator moves the denominator by one in the direction of change,
// wrapping between MinDenominator and MaxDenominator. A zero change is a no-op.
func (p *Prescaler) StepDenominator(change int8) {
	switch {
	case change < 0:
		if p.Denominator > MinDenominator {
			p.Denominator--
		} else {
			p.Denominator = MaxDenominator
		}
	case change > 0:
		if p.Denominator < MaxDenominator {
			p.Denominator++
		} else {
			p.Denominator = MinDenominator
		}
	}
}

// MinInterval is the shortest toggle interval. A bar shorter than the
// denominator would otherwise give 0 and toggle on every loop iteration.
const MinInterval = 1

// Interval returns the number of ticks between toggles for a bar of barTicks.
// The division happens before the multiplication, as the hardware always did.
func (p Prescaler) Interval(barTicks uint32) uint32 {
	interval := barTicks / uint32(p.Denominator) * uint32(p.Numerator)
	if interval < MinInterval {
		return MinInterval
	}
	return interval
}

// ChannelDriver drives the indicator and the output signal of one channel.
// Both levels are passed together so a driver can apply them in one write.
type ChannelDriver interface {
	Write(led, out bool)
}

// ClockOutput is the logical output level of a channel, mirrored on its
// indicator and output signal
type ClockOutput struct {
	state  bool
	led    bool
	driver ChannelDriver
}

// NewClockOutput creates an output and drives it low
func NewClockOutput(driver ChannelDriver) ClockOutput {
	o := ClockOutput{driver: driver}
	o.write()
	return o
}

func (o *ClockOutput) write() {
	if o.driver != nil {
		o.driver.Write(o.led, o.state)
	}
}

// SetHigh drives indicator and output high
func (o *ClockOutput) SetHigh() {
	o.state = true
	o.led = true
	o.write()
}

// SetLow drives indicator and output low
func (o *ClockOutput) SetLow() {
	o.state = false
	o.led = false
	o.write()
}

// Toggle inverts the output level
func (o *ClockOutput) Toggle() {
	if o.state {
		o.SetLow()
	} else {
		o.SetHigh()
	}
}

// SetLED overrides the indicator without touching the output
func (o *ClockOutput) SetLED(on bool) {
	o.led = on
	o.write()
}

// State returns the output level
func (o *ClockOutput) State() bool {
	return o.state
}

// LED returns the indicator level
func (o *ClockOutput) LED() bool {
	return o.led
}

// ClockChannel schedules the toggles of one output against the global tick
// count. The schedule restarts at every bar boundary.
type ClockChannel struct {
	prescaler         Prescaler
	threshold         uint32 // Next tick at which to toggle
	thresholdInterval uint32 // Ticks between toggles
	previousTicks     uint32 // Tick count seen by the last Update
	output            ClockOutput
}

// NewClockChannel creates a channel for a bar of barTicks
func NewClockChannel(driver ChannelDriver, prescaler Prescaler, barTicks uint32) *ClockChannel {
	prescaler = NewPrescaler(prescaler.Numerator, prescaler.Denominator)
	interval := prescaler.Interval(barTicks)
	return &ClockChannel{
		prescaler:         prescaler,
		threshold:         interval,
		thresholdInterval: interval,
		output:            NewClockOutput(driver),
	}
}

// CalculateThreshold recomputes the toggle interval for a new bar length.
// The pending threshold is left alone: the new interval applies from the next
// toggle onwards. Resetting here makes every channel double-pulse while the
// tempo knob turns.
func (c *ClockChannel) CalculateThreshold(barTicks uint32) {
	c.thresholdInterval = c.prescaler.Interval(barTicks)
}

// ResetThreshold restarts the schedule at the bar boundary with the output high
func (c *ClockChannel) ResetThreshold() {
	c.threshold = c.thresholdInterval
	c.previousTicks = 0
	c.output.SetHigh()
}

// Update advances the schedule to tick count ticks. A tick count lower than the
// previous one means the bar restarted.
func (c *ClockChannel) Update(ticks uint32) {
	if c.previousTicks > ticks {
		c.ResetThreshold()
	} else if ticks >= c.threshold {
		c.output.Toggle()
		c.threshold += c.thresholdInterval
	}
	c.previousTicks = ticks
}

// UpdateDenominator steps the denominator by one (wrapping) and recomputes the
// interval for barTicks
func (c *ClockChannel) UpdateDenominator(change int8, barTicks uint32) {
	c.prescaler.StepDenominator(change)
	c.CalculateThreshold(barTicks)
}

// SetNumerator changes the numerator and recomputes the interval for barTicks
func (c *ClockChannel) SetNumerator(numerator uint16, barTicks uint32) {
	c.prescaler.SetNumerator(numerator)
	c.CalculateThreshold(barTicks)
}

// SetLED overrides the channel indicator
func (c *ClockChannel) SetLED(on bool) {
	c.output.SetLED(on)
}

func (c *ClockChannel) Prescaler() Prescaler { return c.prescaler }
func (c *ClockChannel) Numerator() uint16 { return c.prescaler.Numerator }
func (c *ClockChannel) Denominator() uint16 { return c.prescaler.Denominator }
func (c *ClockChannel) Threshold() uint32 { return c.threshold }
func (c *ClockChannel) ThresholdInterval() uint32 { return c.thresholdInterval }
func (c *ClockChannel) PreviousTicks() uint32 { return c.previousTicks }
func (c *ClockChannel) State() bool { return c.output.State() }
func (c *ClockChannel) LED() bool { return c.output.LED() }
