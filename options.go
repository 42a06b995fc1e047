package askailimiter

import (
	"time"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

// Option is a functional option for configuring the limiter
type Option func(*Config) error

// WithBackend stores counters in b. The limiter closes it on Close.
func WithBackend(b backends.Backend) Option {
	return func(config *Config) error {
		if b == nil {
			return ErrNilBackend
		}
		config.Storage = b
		return nil
	}
}

// WithConfig sets the quota
func WithConfig(quota fixedwindow.Config) Option {
	return func(config *Config) error {
		config.Quota = quota
		return nil
	}
}

// WithConfigText merges "limit=…,window=…" text onto the quota set so far.
// Entries that do not parse are ignored.
func WithConfigText(text string) Option {
	return func(config *Config) error {
		config.Quota = fixedwindow.ParseConfig(text, config.Quota)
		return nil
	}
}

// WithKeyPrefix sets the prefix of counter keys (default "askai")
func WithKeyPrefix(prefix string) Option {
	return func(config *Config) error {
		config.KeyPrefix = prefix
		return nil
	}
}

// WithMaxRetries bounds the compare-and-swap attempts per request
func WithMaxRetries(n int) Option {
	return func(config *Config) error {
		config.MaxRetries = n
		return nil
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(config *Config) error {
		config.clock = now
		return nil
	}
}

// WithoutExpiry writes windowed counters without a TTL
func WithoutExpiry() Option {
	return func(config *Config) error {
		config.NoExpiry = true
		return nil
	}
}
