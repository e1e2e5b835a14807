package task

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

// Every calls fn once per period until ctx ends, sleeping before each call.
// period is read again every cycle so it can follow a shared setting; a
// non-positive period is treated as one millisecond. Every returns nil.
func Every(ctx context.Context, clk clock.Clock, period func() time.Duration, fn func(ctx context.Context)) error {
	if clk == nil {
		clk = clock.RealClock{}
	}

	for {
		d := period()
		if d <= 0 {
			d = time.Millisecond
		}

		timer := clk.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C():
		}

		fn(ctx)
	}
}

// Fixed returns a period function for a constant duration.
func Fixed(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}
