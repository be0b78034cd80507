package core

import "testing"

func TestCalcOverflow(t *testing.T) {
	testCases := []struct {
		clockHz, targetHz, prescale uint32
		expected                    uint32
	}{
		{16000000, 4, 256, 15624}, // F = 16MHz / (256 * (1 + 15624)) = 4Hz
		{16000000, 10000, 8, 199},
		{1000000, 10000, 1, 99},
		{1000000, 0, 1, 0},
		{1000000, 10000, 0, 0},
		{100, 10000, 1, 0},
	}

	for _, tc := range testCases {
		if got := CalcOverflow(tc.clockHz, tc.targetHz, tc.prescale); got != tc.expected {
			t.Errorf("CalcOverflow(%d, %d, %d): expected %d, got %d",
				tc.clockHz, tc.targetHz, tc.prescale, tc.expected, got)
		}
	}
}

func TestDefaultTimerConfig(t *testing.T) {
	cfg := DefaultTimerConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Period() != 100 {
		t.Errorf("Expected 100us period, got %d", cfg.Period())
	}
	if cfg.ActualHz() != TickRate {
		t.Errorf("Expected %d Hz, got %d", TickRate, cfg.ActualHz())
	}
}

func TestTimerConfigValidate(t *testing.T) {
	bad := []TimerConfig{
		{ClockHz: 1000000, TargetHz: 0, Prescale: 1},
		{ClockHz: 1000000, TargetHz: 10000, Prescale: 0},
		{ClockHz: 10000, TargetHz: 10000, Prescale: 1},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err != ErrTimerConfig {
			t.Errorf("%+v: expected ErrTimerConfig, got %v", cfg, err)
		}
	}
}

func TestTicksToUS(t *testing.T) {
	if got := TicksToUS(2500); got != 250000 {
		t.Errorf("Expected 250000us for 2500 ticks, got %d", got)
	}
}
