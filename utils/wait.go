package utils

import (
	"context"
	"time"
)

// SleepOrWait pauses for delay.
//
// Delays up to threshold are slept with time.Sleep and ignore ctx. Longer
// delays return early with ctx.Err() when ctx is done first.
func SleepOrWait(ctx context.Context, delay time.Duration, threshold time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if delay <= threshold {
		time.Sleep(delay)
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
