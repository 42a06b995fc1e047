// Package askailimiter caps the number of requests forwarded to the askai API
// within a fixed or cumulative time window.
//
// Counters are kept in a shared backends.Backend and updated only through
// compare-and-swap, so several gateway replicas can enforce one quota. When
// the store misbehaves the limiter admits the request rather than block it.
package askailimiter

import (
	"context"
	"fmt"

	"github.com/ajiwo/askailimiter/backends/memory"
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

// Limiter enforces one quota over all traffic it is asked about
type Limiter struct {
	config   Config
	strategy *fixedwindow.Strategy
}

// New creates a limiter with functional options. Without WithBackend it
// keeps counters in process memory.
func New(opts ...Option) (*Limiter, error) {
	config := defaultConfig()

	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return newLimiter(config)
}

// Allow counts one request against the active window and reports the decision.
//
// The result is always usable. A non-nil error means the store could not be
// consulted and the request was admitted anyway (Result.FailOpen).
func (l *Limiter) Allow(ctx context.Context) (strategies.Result, error) {
	return l.strategy.Admit(ctx, l.config.clock(), l.config.Quota)
}

// Peek reports what Allow would decide without consuming quota
func (l *Limiter) Peek(ctx context.Context) (strategies.Result, error) {
	return l.strategy.Peek(ctx, l.config.clock(), l.config.Quota)
}

// Reset clears the counter of the active window
func (l *Limiter) Reset(ctx context.Context) error {
	if err := l.strategy.Reset(ctx, l.config.clock(), l.config.Quota); err != nil {
		return fmt.Errorf("failed to reset counter: %w", err)
	}
	return nil
}

// Config returns the quota in effect
func (l *Limiter) Config() fixedwindow.Config {
	return l.config.Quota
}

// Key returns the counter key for the active window
func (l *Limiter) Key() string {
	return l.strategy.Key(l.config.clock(), l.config.Quota)
}

// Close releases the storage backend
func (l *Limiter) Close() error {
	if l.config.Storage != nil {
		return l.config.Storage.Close()
	}
	return nil
}

func newLimiter(config Config) (*Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Storage == nil {
		config.Storage = memory.New()
	}

	opts := []fixedwindow.Option{
		fixedwindow.WithKeyPrefix(config.KeyPrefix),
		fixedwindow.WithMaxRetries(config.MaxRetries),
	}
	if config.NoExpiry {
		opts = append(opts, fixedwindow.WithoutExpiry())
	}

	return &Limiter{
		config:   config,
		strategy: fixedwindow.New(config.Storage, opts...),
	}, nil
}
