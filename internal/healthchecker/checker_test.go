package healthchecker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajiwo/askailimiter/backends"
)

// probeBackend counts Get calls and fails them on demand
type probeBackend struct {
	backends.Backend
	mu      sync.Mutex
	fail    bool
	calls   int
	lastKey string
}

func (p *probeBackend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastKey = key
	if p.fail {
		return nil, backends.NoVersion, backends.NewHealthError("probe:Get", errors.New("connection refused"))
	}
	return nil, backends.NoVersion, nil
}

func (p *probeBackend) setFail(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = fail
}

func (p *probeBackend) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 10*time.Second, config.Interval)
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.Equal(t, DefaultProbeKey, config.ProbeKey)
}

func TestOptions(t *testing.T) {
	c := New(&probeBackend{}, nil,
		WithInterval(time.Minute),
		WithTimeout(time.Second),
		WithProbeKey("probe"),
	)
	assert.Equal(t, Config{Interval: time.Minute, Timeout: time.Second, ProbeKey: "probe"}, c.Config())

	c = New(&probeBackend{}, nil, WithConfig(Config{Interval: time.Second}))
	assert.Equal(t, DefaultProbeKey, c.Config().ProbeKey, "empty probe key falls back to the default")
}

func TestChecker_StartAndStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &probeBackend{}
		var healthy atomic.Int32
		c := New(backend, func() { healthy.Add(1) }, WithInterval(time.Second), WithTimeout(100*time.Millisecond))

		c.Start()
		c.Start()
		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()
		c.Stop()
		c.Stop()

		assert.Equal(t, 3, backend.callCount())
		assert.Equal(t, int32(3), healthy.Load())

		time.Sleep(5 * time.Second)
		synctest.Wait()
		assert.Equal(t, 3, backend.callCount(), "no probes after Stop")
	})
}

func TestChecker_ZeroInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		backend := &probeBackend{}
		c := New(backend, nil, WithInterval(0))
		c.Start()

		time.Sleep(time.Minute)
		synctest.Wait()
		assert.Zero(t, backend.callCount())
		c.Stop()
	})
}

func TestChecker_StopWithoutStart(t *testing.T) {
	c := New(&probeBackend{}, nil)
	c.Stop()
}

func TestChecker_CheckTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	backend := &probeBackend{}
	var healthy int
	c := New(backend, func() { healthy++ }, WithProbeKey("probe"), WithLogger(zap.New(core)))

	require.True(t, c.Healthy())

	backend.setFail(true)
	err := c.Check(t.Context())
	require.Error(t, err)
	assert.True(t, backends.IsHealthError(err))
	assert.False(t, c.Healthy())
	require.Error(t, c.Check(t.Context()))
	assert.Zero(t, healthy)

	backend.setFail(false)
	require.NoError(t, c.Check(t.Context()))
	assert.True(t, c.Healthy())
	assert.Equal(t, 1, healthy)
	assert.Equal(t, "probe", backend.lastKey)

	assert.Equal(t, 1, logs.FilterMessage("backend probe failed").Len(), "repeated failures log once")
	assert.Equal(t, 1, logs.FilterMessage("backend probe recovered").Len())
}

// slowBackend blocks Get until the context ends
type slowBackend struct {
	backends.Backend
}

func (slowBackend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	<-ctx.Done()
	return nil, backends.NoVersion, backends.MaybeConnError("slow:Get", ctx.Err(), nil)
}

func TestChecker_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := New(slowBackend{}, nil, WithTimeout(50*time.Millisecond))

		start := time.Now()
		err := c.Check(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 50*time.Millisecond, time.Since(start))
		assert.False(t, c.Healthy())
	})
}
