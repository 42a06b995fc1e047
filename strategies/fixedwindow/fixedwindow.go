// Package fixedwindow admits requests against a counter per fixed time
// bucket, or against one cumulative counter when no window is set.
//
// Counters live in a backends.Backend and are only ever changed through
// CheckAndSet, so any number of limiters may share one store.
package fixedwindow

import (
	"context"
	"time"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow/internal"
	"github.com/ajiwo/askailimiter/utils"
)

// DefaultKeyPrefix is the prefix of every counter key
const DefaultKeyPrefix = "askai"

var _ strategies.Strategy[Config] = (*Strategy)(nil)

// Strategy implements the fixed window counter
type Strategy struct {
	storage    backends.Backend
	prefix     string
	maxRetries int
	expiry     bool
}

type Option func(*Strategy)

// WithKeyPrefix replaces DefaultKeyPrefix. Validate checks it.
func WithKeyPrefix(prefix string) Option {
	return func(s *Strategy) { s.prefix = prefix }
}

// WithMaxRetries bounds the CheckAndSet attempts per admission.
func WithMaxRetries(n int) Option {
	return func(s *Strategy) { s.maxRetries = n }
}

// WithoutExpiry writes windowed counters with no TTL.
func WithoutExpiry() Option {
	return func(s *Strategy) { s.expiry = false }
}

// New creates a new fixed window strategy
func New(storage backends.Backend, opts ...Option) *Strategy {
	s := &Strategy{
		storage:    storage,
		prefix:     DefaultKeyPrefix,
		maxRetries: strategies.DefaultMaxRetries,
		expiry:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the options the strategy was built with
func (s *Strategy) Validate() error {
	if err := utils.ValidateKeyPrefix(s.prefix); err != nil {
		return NewInvalidKeyPrefixError(err)
	}
	if s.maxRetries < 1 || s.maxRetries > strategies.MaxRetries {
		return NewInvalidMaxRetriesError(s.maxRetries)
	}
	return nil
}

func (s *Strategy) params(config Config) internal.Params {
	return internal.Params{
		Prefix:     s.prefix,
		Limit:      config.Limit,
		Window:     config.Window,
		MaxRetries: s.maxRetries,
		Expiry:     s.expiry,
	}
}

// Admit counts one request at now and decides on it. An invalid config or
// an unusable store admits the request with FailOpen set and returns the
// cause.
func (s *Strategy) Admit(ctx context.Context, now time.Time, config Config) (strategies.Result, error) {
	if err := config.Validate(); err != nil {
		return strategies.Result{Decision: strategies.Allow, Limit: config.Limit, FailOpen: true}, err
	}
	return internal.Allow(ctx, s.storage, s.params(config), now, internal.TryUpdate)
}

// Peek reports the decision Admit would make at now without counting.
func (s *Strategy) Peek(ctx context.Context, now time.Time, config Config) (strategies.Result, error) {
	if err := config.Validate(); err != nil {
		return strategies.Result{Decision: strategies.Allow, Limit: config.Limit, FailOpen: true}, err
	}
	return internal.Allow(ctx, s.storage, s.params(config), now, internal.ReadOnly)
}

// Reset deletes the counter of the window active at now.
func (s *Strategy) Reset(ctx context.Context, now time.Time, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	return internal.Reset(ctx, s.storage, s.params(config), now)
}

// Key returns the counter key in use at now.
func (s *Strategy) Key(now time.Time, config Config) string {
	return internal.WindowKey(s.prefix, now, config.Window)
}
