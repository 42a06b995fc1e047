package composite

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/backendtest"
	"github.com/ajiwo/askailimiter/backends/memory"
	"github.com/ajiwo/askailimiter/internal/healthchecker"
)

// flakyBackend wraps a memory store and reports connection failures while down
type flakyBackend struct {
	*memory.Backend
	down    atomic.Bool
	failErr error
}

func newFlaky() *flakyBackend {
	return &flakyBackend{
		Backend: memory.New(),
		failErr: backends.NewHealthError("flaky", errors.New("connection refused")),
	}
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	if f.down.Load() {
		return nil, backends.NoVersion, f.failErr
	}
	return f.Backend.Get(ctx, key)
}

func (f *flakyBackend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	if f.down.Load() {
		return false, f.failErr
	}
	return f.Backend.CheckAndSet(ctx, key, value, expected, ttl)
}

func (f *flakyBackend) Delete(ctx context.Context, key string) error {
	if f.down.Load() {
		return f.failErr
	}
	return f.Backend.Delete(ctx, key)
}

func noProbe() healthchecker.Config {
	return healthchecker.Config{Interval: -1}
}

func newComposite(t *testing.T, primary, secondary backends.Backend, threshold int32) *Backend {
	t.Helper()
	c, err := New(Config{
		Primary:        primary,
		Secondary:      secondary,
		CircuitBreaker: BreakerConfig{FailureThreshold: threshold, RecoveryTimeout: time.Hour},
		HealthChecker:  noProbe(),
	})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	primary, secondary := memory.New(), memory.New()
	t.Cleanup(func() {
		_ = primary.Close()
		_ = secondary.Close()
	})

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "valid", config: Config{Primary: primary, Secondary: secondary, HealthChecker: noProbe()}},
		{name: "missing primary", config: Config{Secondary: secondary}, wantErr: ErrNoPrimary},
		{name: "missing secondary", config: Config{Primary: primary}, wantErr: ErrNoSecondary},
		{name: "same store", config: Config{Primary: primary, Secondary: primary}, wantErr: ErrSameBackend},
		{
			name:    "negative threshold",
			config:  Config{Primary: primary, Secondary: secondary, CircuitBreaker: BreakerConfig{FailureThreshold: -1}},
			wantErr: backends.ErrInvalidConfig,
		},
		{
			name: "timeout not below interval",
			config: Config{Primary: primary, Secondary: secondary,
				HealthChecker: healthchecker.Config{Interval: time.Second, Timeout: time.Second}},
			wantErr: backends.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			c.healthChecker.Stop()
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, int32(DefaultFailureThreshold), config.CircuitBreaker.FailureThreshold)
	assert.Equal(t, DefaultRecoveryTimeout, config.CircuitBreaker.RecoveryTimeout)
	assert.Equal(t, healthchecker.DefaultConfig(), config.HealthChecker)
	assert.NotNil(t, config.Logger)
}

func TestConformance_PrimaryHealthy(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		return newComposite(t, memory.New(), memory.New(), 3)
	})
}

func TestConformance_PrimaryDown(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		primary := newFlaky()
		primary.down.Store(true)
		return newComposite(t, primary, memory.New(), 1)
	})
}

func TestFailover_VersionsDoNotCross(t *testing.T) {
	ctx := t.Context()
	primary, secondary := newFlaky(), memory.New()
	c := newComposite(t, primary, secondary, 1)
	t.Cleanup(func() { _ = c.Close() })

	ok, err := c.CheckAndSet(ctx, "askai:2", []byte("5"), backends.NoVersion, 0)
	require.NoError(t, err)
	require.True(t, ok)
	_, primaryVer, err := c.Get(ctx, "askai:2")
	require.NoError(t, err)
	assert.False(t, fromSecondary(primaryVer))

	primary.down.Store(true)

	value, ver, err := c.Get(ctx, "askai:2")
	require.NoError(t, err)
	assert.Equal(t, StateOpen, c.State())
	assert.Equal(t, "secondary", c.Active())
	assert.Nil(t, value, "counters are not copied to the secondary")
	assert.Equal(t, backends.NoVersion, ver)

	ok, err = c.CheckAndSet(ctx, "askai:2", []byte("6"), primaryVer, 0)
	require.NoError(t, err)
	assert.False(t, ok, "a primary version must not match on the secondary")

	ok, err = c.CheckAndSet(ctx, "askai:2", []byte("1"), backends.NoVersion, 0)
	require.NoError(t, err)
	require.True(t, ok)

	value, secondaryVer, err := c.Get(ctx, "askai:2")
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
	assert.True(t, fromSecondary(secondaryVer))

	raw, rawVer, err := secondary.Get(ctx, "askai:2")
	require.NoError(t, err)
	assert.Equal(t, "1", string(raw))
	assert.Equal(t, secondaryVer&^secondaryTag, rawVer)

	primary.down.Store(false)
	require.NoError(t, c.healthChecker.Check(ctx))
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, "primary", c.Active())

	ok, err = c.CheckAndSet(ctx, "askai:2", []byte("2"), secondaryVer, 0)
	require.NoError(t, err)
	assert.False(t, ok, "a secondary version must not match on the primary")

	value, ver, err = c.Get(ctx, "askai:2")
	require.NoError(t, err)
	assert.Equal(t, "5", string(value))
	assert.Equal(t, primaryVer, ver)
}

func TestFailover_CreateFallsThrough(t *testing.T) {
	ctx := t.Context()
	primary, secondary := newFlaky(), memory.New()
	c := newComposite(t, primary, secondary, 1)
	t.Cleanup(func() { _ = c.Close() })

	primary.down.Store(true)
	ok, err := c.CheckAndSet(ctx, "k", []byte("1"), backends.NoVersion, 0)
	require.NoError(t, err)
	assert.True(t, ok, "create trips the breaker and lands on the secondary")

	value, _, err := secondary.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
}

func TestFailover_SwapAfterTripReportsConflict(t *testing.T) {
	ctx := t.Context()
	primary := newFlaky()
	c := newComposite(t, primary, memory.New(), 1)
	t.Cleanup(func() { _ = c.Close() })

	ok, err := c.CheckAndSet(ctx, "k", []byte("1"), backends.NoVersion, 0)
	require.NoError(t, err)
	require.True(t, ok)
	_, ver, err := c.Get(ctx, "k")
	require.NoError(t, err)

	primary.down.Store(true)
	ok, err = c.CheckAndSet(ctx, "k", []byte("2"), ver, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateOpen, c.State())
}

func TestFailover_BelowThresholdReturnsError(t *testing.T) {
	ctx := t.Context()
	primary := newFlaky()
	c := newComposite(t, primary, memory.New(), 3)
	t.Cleanup(func() { _ = c.Close() })

	primary.down.Store(true)
	for i := range 2 {
		_, _, err := c.Get(ctx, "k")
		require.Error(t, err, "attempt %d", i)
		assert.True(t, backends.IsHealthError(err))
		assert.Equal(t, StateClosed, c.State())
	}
	assert.Equal(t, int32(2), c.FailureCount())

	_, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, StateOpen, c.State())
}

func TestFailover_PlainErrorsDoNotTrip(t *testing.T) {
	ctx := t.Context()
	primary := newFlaky()
	primary.failErr = errors.New("permission denied")
	c := newComposite(t, primary, memory.New(), 1)
	t.Cleanup(func() { _ = c.Close() })

	primary.down.Store(true)
	err := c.Delete(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, StateClosed, c.State())
	assert.Zero(t, c.FailureCount())
}

func TestFailover_DeleteOnActiveStore(t *testing.T) {
	ctx := t.Context()
	primary, secondary := newFlaky(), memory.New()
	c := newComposite(t, primary, secondary, 1)
	t.Cleanup(func() { _ = c.Close() })

	_, err := secondary.CheckAndSet(ctx, "k", []byte("3"), backends.NoVersion, 0)
	require.NoError(t, err)

	primary.down.Store(true)
	require.NoError(t, c.Delete(ctx, "k"))

	value, _, err := secondary.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestFailover_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	primary := newFlaky()
	c, err := New(Config{
		Primary:        primary,
		Secondary:      memory.New(),
		CircuitBreaker: BreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour},
		HealthChecker:  noProbe(),
		Logger:         zap.New(core),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	primary.down.Store(true)
	_, _, err = c.Get(t.Context(), "k")
	require.NoError(t, err)

	primary.down.Store(false)
	require.NoError(t, c.healthChecker.Check(t.Context()))

	assert.Equal(t, 1, logs.FilterMessage("primary store unavailable, failing over").Len())
	assert.Equal(t, 1, logs.FilterMessage("primary store recovered").Len())
}

func TestFailover_BackgroundProbeRecovers(t *testing.T) {
	primary := newFlaky()
	c, err := New(Config{
		Primary:        primary,
		Secondary:      memory.New(),
		CircuitBreaker: BreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Hour},
		HealthChecker:  healthchecker.Config{Interval: 10 * time.Millisecond, Timeout: 5 * time.Millisecond},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	primary.down.Store(true)
	_, _, err = c.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, StateOpen, c.State())

	primary.down.Store(false)
	assert.Eventually(t, func() bool { return c.State() == StateClosed }, time.Second, 5*time.Millisecond)
}

func TestConcurrentIncrementsAcrossFailover(t *testing.T) {
	ctx := t.Context()
	primary, secondary := newFlaky(), memory.New()
	c := newComposite(t, primary, secondary, 1)
	t.Cleanup(func() { _ = c.Close() })

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := range 40 {
		if i == 20 {
			primary.down.Store(true)
		}
		wg.Go(func() {
			for {
				raw, ver, err := c.Get(ctx, "k")
				if err != nil {
					return
				}
				ok, err := c.CheckAndSet(ctx, "k", append(bytes.Clone(raw), 'x'), ver, 0)
				if err != nil {
					return
				}
				if ok {
					allowed.Add(1)
					return
				}
			}
		})
	}
	wg.Wait()

	primaryRaw, _, err := primary.Backend.Get(ctx, "k")
	require.NoError(t, err)
	secondaryRaw, _, err := secondary.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int(allowed.Load()), len(primaryRaw)+len(secondaryRaw),
		"every successful swap is visible in exactly one store")
}

func TestRegistry(t *testing.T) {
	b, err := backends.Create("composite", Config{
		Primary:       memory.New(),
		Secondary:     memory.New(),
		HealthChecker: noProbe(),
	})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = backends.Create("composite", "memory,redis")
	require.ErrorIs(t, err, backends.ErrInvalidConfig)
}
