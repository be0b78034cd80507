package core

import "testing"

// recordingDriver is a ChannelDriver that keeps every write
type recordingDriver struct {
	writes []driverWrite
}

type driverWrite struct {
	led, out bool
}

func (d *recordingDriver) Write(led, out bool) {
	d.writes = append(d.writes, driverWrite{led: led, out: out})
}

func (d *recordingDriver) last() driverWrite {
	return d.writes[len(d.writes)-1]
}

func TestNewPrescalerClamps(t *testing.T) {
	testCases := []struct {
		num, den       uint16
		expNum, expDen uint16
	}{
		{1, 4, 1, 4},
		{0, 4, 1, 4},
		{1, 0, 1, MinDenominator},
		{1, 500, 1, MaxDenominator},
		{3, 128, 3, 128},
	}

	for _, tc := range testCases {
		p := NewPrescaler(tc.num, tc.den)
		if p.Numerator != tc.expNum || p.Denominator != tc.expDen {
			t.Errorf("NewPrescaler(%d, %d): expected {%d %d}, got {%d %d}",
				tc.num, tc.den, tc.expNum, tc.expDen, p.Numerator, p.Denominator)
		}
	}
}

func TestThresholdIntervalFormula(t *testing.T) {
	for _, barTicks := range []uint32{120, 4999, 10000, 40000} {
		for den := uint16(MinDenominator); den <= MaxDenominator; den++ {
			for _, num := range []uint16{1, 2, 3} {
				ch := NewClockChannel(nil, NewPrescaler(num, den), barTicks)
				expected := barTicks / uint32(den) * uint32(num)
				if expected == 0 {
					expected = MinInterval
				}
				if ch.ThresholdInterval() != expected {
					t.Fatalf("bar=%d %d/%d: expected interval %d, got %d",
						barTicks, num, den, expected, ch.ThresholdInterval())
				}
				if ch.Threshold() != expected {
					t.Fatalf("bar=%d %d/%d: expected initial threshold %d, got %d",
						barTicks, num, den, expected, ch.Threshold())
				}
			}
		}
	}
}

func TestIntervalFloorAtFastestTempo(t *testing.T) {
	barTicks := NewTempo(MaxBPM).BarTicks()
	ch := NewClockChannel(nil, NewPrescaler(1, MaxDenominator), barTicks)
	if ch.ThresholdInterval() != MinInterval {
		t.Fatalf("Expected interval %d, got %d", MinInterval, ch.ThresholdInterval())
	}

	// One toggle per tick, never one per call
	toggles := 0
	state := ch.State()
	for tick := uint32(1); tick <= 10; tick++ {
		for call := 0; call < 3; call++ {
			ch.Update(tick)
			if ch.State() != state {
				state = ch.State()
				toggles++
			}
		}
	}
	if toggles != 10 {
		t.Errorf("Expected 10 toggles in 10 ticks, got %d", toggles)
	}
}

func TestUpdateDenominatorWraps(t *testing.T) {
	ch := NewClockChannel(nil, NewPrescaler(1, MaxDenominator), 10000)
	ch.UpdateDenominator(1, 10000)
	if ch.Denominator() != MinDenominator {
		t.Errorf("Expected increment past %d to wrap to %d, got %d", MaxDenominator, MinDenominator, ch.Denominator())
	}
	ch.UpdateDenominator(-1, 10000)
	if ch.Denominator() != MaxDenominator {
		t.Errorf("Expected decrement below %d to wrap to %d, got %d", MinDenominator, MaxDenominator, ch.Denominator())
	}
	if ch.ThresholdInterval() != 10000/MaxDenominator {
		t.Errorf("Expected interval to follow denominator, got %d", ch.ThresholdInterval())
	}
}

func TestUpdateDenominatorClosure(t *testing.T) {
	for _, change := range []int8{1, -1} {
		for start := uint16(MinDenominator); start <= MaxDenominator; start++ {
			ch := NewClockChannel(nil, NewPrescaler(1, start), 10000)
			for i := 0; i < MaxDenominator; i++ {
				ch.UpdateDenominator(change, 10000)
				if d := ch.Denominator(); d < MinDenominator || d > MaxDenominator {
					t.Fatalf("Denominator left range: %d", d)
				}
			}
			if ch.Denominator() != start {
				t.Errorf("change=%d start=%d: expected to return to start after %d steps, got %d",
					change, start, MaxDenominator, ch.Denominator())
			}
		}
	}
}

func TestCalculateThresholdIdempotent(t *testing.T) {
	ch := NewClockChannel(nil, NewPrescaler(1, 4), 10000)
	for tick := uint32(0); tick <= 3000; tick++ {
		ch.Update(tick)
	}
	threshold := ch.Threshold()

	ch.CalculateThreshold(8000)
	interval := ch.ThresholdInterval()
	ch.CalculateThreshold(8000)

	if ch.ThresholdInterval() != interval {
		t.Errorf("Expected interval %d after repeat, got %d", interval, ch.ThresholdInterval())
	}
	if ch.Threshold() != threshold {
		t.Errorf("Expected live threshold %d to be untouched, got %d", threshold, ch.Threshold())
	}
}

func TestTempoChangeAppliesFromNextEdge(t *testing.T) {
	drv := &recordingDriver{}
	ch := NewClockChannel(drv, NewPrescaler(1, 4), 10000)

	for tick := uint32(0); tick <= 2500; tick++ {
		ch.Update(tick)
	}
	// Edge at 2500 scheduled the next one at 5000 with the old interval
	ch.CalculateThreshold(8000)
	writes := len(drv.writes)
	ch.Update(2501)
	if len(drv.writes) != writes {
		t.Fatal("Expected no immediate pulse on tempo change")
	}

	var edges []uint32
	state := ch.State()
	for tick := uint32(2502); tick <= 9000; tick++ {
		ch.Update(tick)
		if ch.State() != state {
			state = ch.State()
			edges = append(edges, tick)
		}
	}
	expected := []uint32{5000, 7000, 9000}
	if len(edges) != len(expected) {
		t.Fatalf("Expected edges %v, got %v", expected, edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("Edge %d: expected %d, got %d", i, expected[i], edges[i])
		}
	}
}

func TestNoDriftOverTenBars(t *testing.T) {
	const barTicks = 10000
	ch := NewClockChannel(&recordingDriver{}, NewPrescaler(1, 3), barTicks)
	interval := ch.ThresholdInterval()

	var edges []uint32
	state := ch.State()
	for tick := uint32(0); tick < 10*barTicks; tick++ {
		ch.Update(tick)
		if ch.State() != state {
			state = ch.State()
			edges = append(edges, tick)
		}
	}

	if len(edges) < 10*3 {
		t.Fatalf("Expected at least %d edges, got %d", 10*3, len(edges))
	}
	for i, edge := range edges {
		if expected := uint32(i+1) * interval; edge != expected {
			t.Fatalf("Edge %d: expected tick %d, got %d", i, expected, edge)
		}
	}
}

func TestBarRestartForcesHigh(t *testing.T) {
	drv := &recordingDriver{}
	ch := NewClockChannel(drv, NewPrescaler(1, 4), 10000)

	// Drive the output low: high at 2500, low at 5000
	for tick := uint32(0); tick <= 6000; tick++ {
		ch.Update(tick)
	}
	if ch.State() {
		t.Fatal("Expected output low before restart")
	}

	ch.Update(10)
	if !ch.State() {
		t.Error("Expected output high after tick count went backwards")
	}
	if got := drv.last(); !got.led || !got.out {
		t.Errorf("Expected driver to see led and output high, got %+v", got)
	}
	if ch.Threshold() != ch.ThresholdInterval() {
		t.Errorf("Expected threshold reset to %d, got %d", ch.ThresholdInterval(), ch.Threshold())
	}
	if ch.PreviousTicks() != 10 {
		t.Errorf("Expected previous ticks 10, got %d", ch.PreviousTicks())
	}
}

func TestBarRestartFromAnyState(t *testing.T) {
	for _, stop := range []uint32{1, 2500, 2501, 5000, 7499, 9999} {
		ch := NewClockChannel(&recordingDriver{}, NewPrescaler(1, 4), 10000)
		for tick := uint32(0); tick <= stop; tick++ {
			ch.Update(tick)
		}
		ch.Update(0)
		if !ch.State() || ch.Threshold() != 2500 {
			t.Errorf("stop=%d: expected high with threshold 2500, got state=%v threshold=%d",
				stop, ch.State(), ch.Threshold())
		}
	}
}

func TestEndToEndQuarterAt120(t *testing.T) {
	barTicks := NewTempo(120).BarTicks()
	if barTicks != 10000 {
		t.Fatalf("Expected 10000 bar ticks at 120 BPM, got %d", barTicks)
	}

	ch := NewClockChannel(&recordingDriver{}, NewPrescaler(1, 4), barTicks)
	if ch.ThresholdInterval() != 2500 {
		t.Fatalf("Expected interval 2500, got %d", ch.ThresholdInterval())
	}

	var edges []uint32
	state := ch.State()
	for tick := uint32(0); tick < barTicks; tick++ {
		ch.Update(tick)
		if ch.State() != state {
			state = ch.State()
			edges = append(edges, tick)
		}
	}
	expected := []uint32{2500, 5000, 7500}
	if len(edges) != len(expected) {
		t.Fatalf("Expected edges %v, got %v", expected, edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("Edge %d: expected %d, got %d", i, expected[i], edges[i])
		}
	}
}

func TestClockOutputKeepsSignalsTogether(t *testing.T) {
	drv := &recordingDriver{}
	out := NewClockOutput(drv)
	for i := 0; i < 5; i++ {
		out.Toggle()
	}
	out.SetHigh()
	out.SetLow()

	for i, w := range drv.writes {
		if w.led != w.out {
			t.Errorf("Write %d: indicator %v and output %v differ", i, w.led, w.out)
		}
	}
	if out.State() {
		t.Error("Expected output low")
	}
}

func TestSetLEDLeavesOutput(t *testing.T) {
	drv := &recordingDriver{}
	ch := NewClockChannel(drv, NewPrescaler(1, 4), 10000)
	ch.ResetThreshold()

	ch.SetLED(false)
	if got := drv.last(); got.led || !got.out {
		t.Errorf("Expected indicator off and output on, got %+v", got)
	}
	if !ch.State() {
		t.Error("Expected output state unchanged")
	}
}

func TestSetNumerator(t *testing.T) {
	ch := NewClockChannel(nil, NewPrescaler(1, 8), 10000)
	ch.SetNumerator(3, 10000)
	if ch.ThresholdInterval() != 10000/8*3 {
		t.Errorf("Expected interval %d, got %d", 10000/8*3, ch.ThresholdInterval())
	}
	ch.SetNumerator(0, 10000)
	if ch.Numerator() != 1 {
		t.Errorf("Expected numerator 0 to be coerced to 1, got %d", ch.Numerator())
	}
}
