package core

import (
	"errors"
	"testing"
)

// momentaryInput reads low for exactly one sample after press()
type momentaryInput struct {
	down bool
}

func (m *momentaryInput) press() { m.down = true }

func (m *momentaryInput) Get() bool {
	if m.down {
		m.down = false
		return false
	}
	return true
}

// queuedEncoder replays queued steps, one per poll
type queuedEncoder struct {
	steps []int8
	panic bool
}

func (e *queuedEncoder) Poll() (int8, bool) {
	if e.panic {
		e.panic = false
		panic("encoder fault")
	}
	if len(e.steps) == 0 {
		return 0, false
	}
	step := e.steps[0]
	e.steps = e.steps[1:]
	return step, true
}

// lastValueDisplay remembers the last painted value as an integer
type lastValueDisplay struct {
	value   int
	updates int
}

func (d *lastValueDisplay) Update(v Displayable) {
	d.updates++
	d.value = 0
	scale := 1
	for i := uint8(0); i < 5; i++ {
		d.value += int(v.DisplayDigit(i)) * scale
		scale *= 10
	}
}

type captureReporter struct {
	statuses []Status
}

func (r *captureReporter) ReportStatus(s Status) {
	r.statuses = append(r.statuses, s)
}

type controllerFixture struct {
	shared   *Shared
	ctrl     *Controller
	channels []*ClockChannel
	drivers  []*recordingDriver
	pause    *momentaryInput
	encBtn   *momentaryInput
	encoder  *queuedEncoder
	display  *lastValueDisplay
	reporter *captureReporter
}

func newControllerFixture(t *testing.T, bpm uint16, denominators ...uint16) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		pause:    &momentaryInput{},
		encBtn:   &momentaryInput{},
		encoder:  &queuedEncoder{},
		display:  &lastValueDisplay{},
		reporter: &captureReporter{},
	}
	tempo := NewTempo(bpm)
	for _, den := range denominators {
		drv := &recordingDriver{}
		f.drivers = append(f.drivers, drv)
		f.channels = append(f.channels, NewClockChannel(drv, NewPrescaler(1, den), tempo.BarTicks()))
	}
	f.shared = NewShared(tempo, f.channels)

	ctrl, err := NewController(f.shared, Peripherals{
		Encoder:       f.encoder,
		Display:       f.display,
		PauseButton:   NewButton(f.pause),
		EncoderButton: NewButton(f.encBtn),
		Reporter:      f.reporter,
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	f.ctrl = ctrl
	return f
}

// run advances the tick counter by one and runs one iteration, n times.
// It returns the absolute iteration numbers at which channel ch changed level.
func (f *controllerFixture) run(n int, ch int) []int {
	var edges []int
	state := f.channels[ch].State()
	for i := 1; i <= n; i++ {
		f.shared.Tick()
		f.ctrl.Step()
		if f.channels[ch].State() != state {
			state = f.channels[ch].State()
			edges = append(edges, i)
		}
	}
	return edges
}

func TestNewControllerErrors(t *testing.T) {
	enc := &queuedEncoder{}
	disp := &lastValueDisplay{}
	btn := NewButton(&momentaryInput{})
	periph := Peripherals{Encoder: enc, Display: disp, PauseButton: btn, EncoderButton: btn}

	if _, err := NewController(NewShared(DefaultTempo(), nil), periph); !errors.Is(err, ErrNoChannels) {
		t.Errorf("Expected ErrNoChannels, got %v", err)
	}

	many := make([]*ClockChannel, MaxChannels+1)
	for i := range many {
		many[i] = NewClockChannel(nil, NewPrescaler(1, 1), 10000)
	}
	if _, err := NewController(NewShared(DefaultTempo(), many), periph); !errors.Is(err, ErrTooManyChannels) {
		t.Errorf("Expected ErrTooManyChannels, got %v", err)
	}

	one := []*ClockChannel{NewClockChannel(nil, NewPrescaler(1, 1), 10000)}
	if _, err := NewController(NewShared(DefaultTempo(), one), Peripherals{Encoder: enc}); !errors.Is(err, ErrMissingDevice) {
		t.Errorf("Expected ErrMissingDevice, got %v", err)
	}
}

func TestControllerRunningQuarterNotes(t *testing.T) {
	f := newControllerFixture(t, 120, 4, 1)

	edges := f.run(9999, 0)
	expected := []int{2500, 5000, 7500}
	if len(edges) != len(expected) {
		t.Fatalf("Expected edges %v, got %v", expected, edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("Edge %d: expected %d, got %d", i, expected[i], edges[i])
		}
	}

	// Tick 10000 is the bar boundary: counter wraps, schedules restart
	f.run(1, 0)
	if ticks := f.shared.Ticks(); ticks != 0 {
		t.Errorf("Expected tick counter wrapped to 0, got %d", ticks)
	}
	for i, ch := range f.channels {
		if !ch.State() || ch.Threshold() != ch.ThresholdInterval() {
			t.Errorf("Channel %d: expected restart high at threshold %d, got state=%v threshold=%d",
				i, ch.ThresholdInterval(), ch.State(), ch.Threshold())
		}
	}
}

func TestControllerFirstBarMatchesLaterBars(t *testing.T) {
	f := newControllerFixture(t, 120, 4)

	for i, ch := range f.channels {
		if !ch.State() || !ch.LED() {
			t.Errorf("Channel %d: expected output and indicator high at power-on", i)
		}
	}
	if last := f.drivers[0].last(); !last.led || !last.out {
		t.Errorf("Expected the driver written high at power-on, got %+v", last)
	}

	edges := f.run(20000, 0)
	expected := []int{2500, 5000, 7500, 10000, 12500, 15000, 17500, 20000}
	if len(edges) != len(expected) {
		t.Fatalf("Expected edges %v, got %v", expected, edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("Edge %d: expected %d, got %d", i, expected[i], edges[i])
		}
	}
}

func TestControllerBarsStayAligned(t *testing.T) {
	f := newControllerFixture(t, 120, 4)

	// Second bar: low at 2500, high at 5000, low at 7500, restart high at 10000
	edges := f.run(30000, 0)
	var secondBar []int
	for _, e := range edges {
		if e > 10000 && e <= 20000 {
			secondBar = append(secondBar, e)
		}
	}
	expected := []int{12500, 15000, 17500, 20000}
	if len(secondBar) != len(expected) {
		t.Fatalf("Expected second bar edges %v, got %v", expected, secondBar)
	}
	for i := range expected {
		if secondBar[i] != expected[i] {
			t.Errorf("Edge %d: expected %d, got %d", i, expected[i], secondBar[i])
		}
	}
}

func TestControllerTempoAdjust(t *testing.T) {
	f := newControllerFixture(t, 120, 4)

	f.encoder.steps = []int8{1}
	f.ctrl.Step()

	if bpm := f.shared.Tempo().BPM; bpm != 121 {
		t.Fatalf("Expected 121 BPM, got %d", bpm)
	}
	bar := NewTempo(121).BarTicks()
	if f.ctrl.BarTicks() != bar {
		t.Errorf("Expected bar ticks %d, got %d", bar, f.ctrl.BarTicks())
	}
	if f.channels[0].ThresholdInterval() != bar/4 {
		t.Errorf("Expected interval %d, got %d", bar/4, f.channels[0].ThresholdInterval())
	}
	if f.channels[0].Threshold() != 2500 {
		t.Errorf("Expected live threshold untouched at 2500, got %d", f.channels[0].Threshold())
	}
	if f.display.value != 121 {
		t.Errorf("Expected display 121, got %d", f.display.value)
	}
}

func TestControllerTempoBounds(t *testing.T) {
	f := newControllerFixture(t, MinBPM, 4)
	f.encoder.steps = []int8{-1, -100}
	f.ctrl.Step()
	f.ctrl.Step()
	if bpm := f.shared.Tempo().BPM; bpm != MinBPM {
		t.Errorf("Expected tempo held at %d, got %d", MinBPM, bpm)
	}

	f = newControllerFixture(t, MaxBPM-3, 4)
	f.encoder.steps = []int8{10, 1}
	f.ctrl.Step()
	f.ctrl.Step()
	if bpm := f.shared.Tempo().BPM; bpm != MaxBPM {
		t.Errorf("Expected tempo held at %d, got %d", MaxBPM, bpm)
	}
}

func TestControllerPauseFreezesAndResyncs(t *testing.T) {
	f := newControllerFixture(t, 120, 4, 2)
	f.run(3000, 0)

	f.pause.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != Paused {
		t.Fatalf("Expected Paused, got %s", f.ctrl.Mode())
	}

	writes := len(f.drivers[0].writes)
	if edges := f.run(5000, 0); len(edges) != 0 {
		t.Errorf("Expected no edges while paused, got %v", edges)
	}
	if len(f.drivers[0].writes) != writes {
		t.Error("Expected no output writes while paused")
	}
	if ticks := f.shared.Ticks(); ticks != 8000 {
		t.Errorf("Expected ticks to keep counting while paused, got %d", ticks)
	}

	// Tempo still adjustable while paused
	f.encoder.steps = []int8{-20}
	f.ctrl.Step()
	if bpm := f.shared.Tempo().BPM; bpm != 100 {
		t.Errorf("Expected 100 BPM, got %d", bpm)
	}

	f.pause.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != Running {
		t.Fatalf("Expected Running, got %s", f.ctrl.Mode())
	}
	if ticks := f.shared.Ticks(); ticks != 0 {
		t.Errorf("Expected tick counter reset on resume, got %d", ticks)
	}
	for i, ch := range f.channels {
		if !ch.State() || ch.Threshold() != ch.ThresholdInterval() {
			t.Errorf("Channel %d: expected resync high, got state=%v threshold=%d", i, ch.State(), ch.Threshold())
		}
	}
}

func TestControllerChannelSelection(t *testing.T) {
	f := newControllerFixture(t, 120, 4, 4, 4, 4)

	f.encBtn.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != SelectingChannel {
		t.Fatalf("Expected SelectingChannel, got %s", f.ctrl.Mode())
	}
	assertOnlyLED(t, f, 0)
	if f.display.value != 1 {
		t.Errorf("Expected display 1, got %d", f.display.value)
	}

	f.encoder.steps = []int8{1}
	f.ctrl.Step()
	assertOnlyLED(t, f, 1)

	f.encoder.steps = []int8{-2}
	f.ctrl.Step()
	if f.ctrl.Selected() != 3 {
		t.Errorf("Expected selection to wrap to 3, got %d", f.ctrl.Selected())
	}
	assertOnlyLED(t, f, 3)
	if f.display.value != 4 {
		t.Errorf("Expected display 4, got %d", f.display.value)
	}

	// Outputs are held while selecting
	if edges := f.run(5000, 0); len(edges) != 0 {
		t.Errorf("Expected no edges while selecting, got %v", edges)
	}
}

func TestControllerSettingDivision(t *testing.T) {
	f := newControllerFixture(t, 120, 4, 2)

	f.encBtn.press()
	f.ctrl.Step()
	f.encoder.steps = []int8{1}
	f.ctrl.Step()
	f.encBtn.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != SettingDivision {
		t.Fatalf("Expected SettingDivision, got %s", f.ctrl.Mode())
	}
	assertOnlyLED(t, f, 1)

	f.encoder.steps = []int8{-2}
	f.ctrl.Step()
	if d := f.channels[1].Denominator(); d != MaxDenominator {
		t.Errorf("Expected denominator to wrap to %d, got %d", MaxDenominator, d)
	}
	if d := f.channels[0].Denominator(); d != 4 {
		t.Errorf("Expected unselected channel untouched, got %d", d)
	}
	if f.display.value != MaxDenominator {
		t.Errorf("Expected display %d, got %d", MaxDenominator, f.display.value)
	}
	if iv := f.channels[1].ThresholdInterval(); iv != 10000/MaxDenominator {
		t.Errorf("Expected interval %d, got %d", 10000/MaxDenominator, iv)
	}

	// Encoder button goes back to channel selection
	f.encBtn.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != SelectingChannel {
		t.Errorf("Expected SelectingChannel, got %s", f.ctrl.Mode())
	}

	// Pause resumes running in sync
	f.pause.press()
	f.ctrl.Step()
	if f.ctrl.Mode() != Running {
		t.Errorf("Expected Running, got %s", f.ctrl.Mode())
	}
	for i, ch := range f.channels {
		if !ch.LED() || !ch.State() {
			t.Errorf("Channel %d: expected indicator and output high after resume", i)
		}
	}
}

func TestControllerReportsChanges(t *testing.T) {
	f := newControllerFixture(t, 120, 4)

	f.ctrl.Step()
	f.ctrl.Step()
	if len(f.reporter.statuses) != 1 {
		t.Fatalf("Expected one initial report, got %d", len(f.reporter.statuses))
	}
	s := f.reporter.statuses[0]
	if s.BPM != 120 || s.Mode != Running || s.Count != 1 || s.Channels[0].Denominator != 4 || s.BarTicks != 10000 {
		t.Errorf("Unexpected initial status %+v", s)
	}

	f.pause.press()
	f.ctrl.Step()
	if len(f.reporter.statuses) != 2 || f.reporter.statuses[1].Mode != Paused {
		t.Errorf("Expected a report for the mode change, got %+v", f.reporter.statuses)
	}
}

func TestControllerIterateRecovers(t *testing.T) {
	f := newControllerFixture(t, 120, 4)

	f.encoder.panic = true
	f.ctrl.Iterate()
	if f.ctrl.Panics() != 1 {
		t.Fatalf("Expected 1 recovered panic, got %d", f.ctrl.Panics())
	}

	// The critical section must have been left; the next iteration works
	f.encoder.steps = []int8{1}
	f.ctrl.Iterate()
	if bpm := f.shared.Tempo().BPM; bpm != 121 {
		t.Errorf("Expected 121 BPM after recovery, got %d", bpm)
	}
}

func assertOnlyLED(t *testing.T, f *controllerFixture, selected int) {
	t.Helper()
	for i, ch := range f.channels {
		if ch.LED() != (i == selected) {
			t.Errorf("Channel %d: expected LED %v, got %v", i, i == selected, ch.LED())
		}
	}
}
