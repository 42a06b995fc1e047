package utils

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepOrWait(t *testing.T) {
	t.Run("short delay ignores canceled context", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			cancel()
			start := time.Now()
			assert.NoError(t, SleepOrWait(ctx, 500*time.Microsecond, time.Millisecond))
			assert.Equal(t, 500*time.Microsecond, time.Since(start))
		})
	})

	t.Run("long delay returns on cancel", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Second)
			defer cancel()
			start := time.Now()
			err := SleepOrWait(ctx, time.Minute, time.Millisecond)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Equal(t, time.Second, time.Since(start))
		})
	})

	t.Run("long delay completes", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			start := time.Now()
			assert.NoError(t, SleepOrWait(t.Context(), 5*time.Millisecond, time.Millisecond))
			assert.Equal(t, 5*time.Millisecond, time.Since(start))
		})
	})

	t.Run("non positive delay reports context state", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		assert.NoError(t, SleepOrWait(ctx, 0, time.Millisecond))
		cancel()
		assert.ErrorIs(t, SleepOrWait(ctx, 0, time.Millisecond), context.Canceled)
	})
}
