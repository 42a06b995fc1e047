package healthchecker

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Checker
type Option func(*Checker)

// WithConfig replaces the whole configuration
func WithConfig(config Config) Option {
	return func(c *Checker) {
		c.config = config
	}
}

// WithInterval sets the probe interval
func WithInterval(interval time.Duration) Option {
	return func(c *Checker) {
		c.config.Interval = interval
	}
}

// WithTimeout sets the per-probe timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.config.Timeout = timeout
	}
}

// WithProbeKey sets the key read by each probe
func WithProbeKey(key string) Option {
	return func(c *Checker) {
		c.config.ProbeKey = key
	}
}

// WithLogger sets the logger used to report probe transitions
func WithLogger(logger *zap.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}
