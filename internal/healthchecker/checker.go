// Package healthchecker probes a backend in the background and reports when it
// answers again.
package healthchecker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/backends"
)

// Checker monitors backend health and triggers recovery
type Checker struct {
	backend   backends.Backend
	config    Config
	logger    *zap.Logger
	onHealthy func()

	healthy  atomic.Bool
	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a checker for backend. onHealthy, if set, runs after every
// successful probe.
func New(backend backends.Backend, onHealthy func(), opts ...Option) *Checker {
	c := &Checker{
		backend:   backend,
		config:    DefaultConfig(),
		logger:    zap.NewNop(),
		onHealthy: onHealthy,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.config.ProbeKey == "" {
		c.config.ProbeKey = DefaultProbeKey
	}
	c.healthy.Store(true)
	return c
}

// Config returns the effective configuration
func (c *Checker) Config() Config {
	return c.config
}

// Healthy reports the outcome of the most recent probe. It is true until the
// first probe fails.
func (c *Checker) Healthy() bool {
	return c.healthy.Load()
}

// Start begins background probing. It is a no-op when the interval is zero or
// the checker was already started.
func (c *Checker) Start() {
	if c.config.Interval <= 0 || !c.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Check(context.Background())
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop ends background probing and waits for the probe goroutine to exit.
// It is safe to call more than once.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		if c.started.Load() {
			<-c.done
		}
	})
}

// Check runs one probe and returns its error
func (c *Checker) Check(ctx context.Context) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	_, _, err := c.backend.Get(ctx, c.config.ProbeKey)
	was := c.healthy.Swap(err == nil)
	if err != nil {
		if was {
			c.logger.Warn("backend probe failed", zap.String("key", c.config.ProbeKey), zap.Error(err))
		}
		return err
	}

	if !was {
		c.logger.Info("backend probe recovered", zap.String("key", c.config.ProbeKey))
	}
	if c.onHealthy != nil {
		c.onHealthy()
	}
	return nil
}
