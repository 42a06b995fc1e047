package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		feedback time.Duration
		full     time.Duration
	}{
		{"first attempt", 0, 100 * time.Microsecond, 100 * time.Microsecond},
		{"second attempt doubles and shifts", 1, 100 * time.Microsecond, 400 * time.Microsecond},
		{"feedback clamped below", 0, time.Nanosecond, 30 * time.Nanosecond},
		{"feedback clamped above", 0, time.Minute, 10 * time.Second},
		{"shift wraps every eight attempts", 8, 10 * time.Nanosecond, 9 * 30 * time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 100 {
				got := NextDelay(tt.attempt, tt.feedback)
				assert.GreaterOrEqual(t, got, tt.full/2)
				assert.Less(t, got, tt.full)
			}
		})
	}
}

func TestRetryLimits(t *testing.T) {
	assert.Greater(t, DefaultMaxRetries, 0)
	assert.Less(t, DefaultMaxRetries, MaxRetries)
}
