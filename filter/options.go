package filter

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

type options struct {
	logger           *zap.Logger
	denyMessage      string
	rateLimitHeaders bool
	clock            func() time.Time
	strategyOpts     []fixedwindow.Option
}

// Option configures a RootContext
type Option func(*options)

// WithDenyMessage replaces the "error" text of the 429 body.
func WithDenyMessage(message string) Option {
	return func(o *options) { o.denyMessage = message }
}

// WithRateLimitHeaders adds X-RateLimit-* and Retry-After headers.
func WithRateLimitHeaders(enabled bool) Option {
	return func(o *options) { o.rateLimitHeaders = enabled }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now. A nil clock is ignored.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithStrategyOptions passes options through to the fixed window strategy.
func WithStrategyOptions(opts ...fixedwindow.Option) Option {
	return func(o *options) { o.strategyOpts = append(o.strategyOpts, opts...) }
}
