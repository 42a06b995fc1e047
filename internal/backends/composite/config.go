package composite

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/internal/healthchecker"
)

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
)

// Config holds configuration for the composite backend
type Config struct {
	Primary        backends.Backend
	Secondary      backends.Backend
	CircuitBreaker BreakerConfig
	HealthChecker  healthchecker.Config
	Logger         *zap.Logger
}

// DefaultConfig returns a configuration with sensible defaults and no stores
func DefaultConfig() Config {
	config := Config{}
	config.SetDefaults()
	return config
}

// SetDefaults fills zero values. A negative health check interval disables
// background probing.
func (c *Config) SetDefaults() {
	if c.CircuitBreaker.FailureThreshold == 0 {
		c.CircuitBreaker.FailureThreshold = DefaultFailureThreshold
	}
	if c.CircuitBreaker.RecoveryTimeout == 0 {
		c.CircuitBreaker.RecoveryTimeout = DefaultRecoveryTimeout
	}

	defaults := healthchecker.DefaultConfig()
	if c.HealthChecker.Interval == 0 {
		c.HealthChecker.Interval = defaults.Interval
	}
	if c.HealthChecker.Timeout == 0 {
		c.HealthChecker.Timeout = defaults.Timeout
	}
	if c.HealthChecker.ProbeKey == "" {
		c.HealthChecker.ProbeKey = defaults.ProbeKey
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Validate validates the composite backend configuration
func (c *Config) Validate() error {
	if c.Primary == nil {
		return ErrNoPrimary
	}
	if c.Secondary == nil {
		return ErrNoSecondary
	}
	if c.Primary == c.Secondary {
		return ErrSameBackend
	}
	if c.CircuitBreaker.FailureThreshold <= 0 {
		return newConfigError("failure threshold must be positive, got %d", c.CircuitBreaker.FailureThreshold)
	}
	if c.CircuitBreaker.RecoveryTimeout <= 0 {
		return newConfigError("recovery timeout must be positive, got %v", c.CircuitBreaker.RecoveryTimeout)
	}
	if c.HealthChecker.Timeout < 0 {
		return newConfigError("health check timeout cannot be negative")
	}
	if c.HealthChecker.Interval > 0 && c.HealthChecker.Timeout >= c.HealthChecker.Interval {
		return newConfigError("health check timeout %v must be less than interval %v",
			c.HealthChecker.Timeout, c.HealthChecker.Interval)
	}
	return nil
}
