package strategies

import (
	"math/rand/v2"
	"time"
)

const (
	// DefaultMaxRetries is the default maximum number of CheckAndSet attempts per admission
	DefaultMaxRetries = 30
	MaxRetries        = 9390

	// SleepThreshold is the backoff below which retries sleep without watching the context
	SleepThreshold = time.Millisecond
)

// NextDelay calculates the next delay.
// It produces a sawtooth-like pattern of exponential backoff for constant feedback.
// In practice, feedback is random, measured from the time before and after of the
// last failed CheckAndSet operation.
func NextDelay(attempt int, feedback time.Duration) time.Duration {
	// The 30ns lower bound keeps a sub-30ns feedback from spinning on the store
	feedback = min(max(feedback, 30*time.Nanosecond), 10*time.Second)

	shift := attempt % 8

	mult := time.Duration(attempt + 1)
	delay := (feedback * mult) << shift

	half := delay >> 1
	// #nosec: G404 non security context
	jitter := time.Duration(rand.Int64N(int64(half)))

	return half + jitter
}
