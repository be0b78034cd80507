package sim

import (
	"context"
	"time"

	"cloooock/core"
)

// TimerResolution is how often the simulated interrupt catches up with
// wall-clock time. Host timers cannot fire at TickRate reliably.
const TimerResolution = time.Millisecond

// RunTimer calls tick core.TickRate*speed times per second until ctx is
// done. Ticks are delivered in bursts every TimerResolution, keeping the
// long-term rate exact.
func RunTimer(ctx context.Context, tick func(), speed uint32) {
	if speed == 0 {
		speed = 1
	}
	ticker := time.NewTicker(TimerResolution)
	defer ticker.Stop()

	start := time.Now()
	var delivered uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			due := uint64(now.Sub(start)) * core.TickRate * uint64(speed) / uint64(time.Second)
			for ; delivered < due; delivered++ {
				tick()
			}
		}
	}
}
