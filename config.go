package askailimiter

import (
	"time"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

// Config holds everything a Limiter is built from
type Config struct {
	Storage backends.Backend
	Quota   fixedwindow.Config

	KeyPrefix  string
	MaxRetries int
	// NoExpiry keeps windowed counters in the store after their window closes
	NoExpiry bool

	clock func() time.Time
}

func defaultConfig() Config {
	return Config{
		Quota:      fixedwindow.DefaultConfig(),
		KeyPrefix:  fixedwindow.DefaultKeyPrefix,
		MaxRetries: strategies.DefaultMaxRetries,
		clock:      time.Now,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validateKeyPrefix(c.KeyPrefix); err != nil {
		return err
	}
	if err := validateMaxRetries(c.MaxRetries); err != nil {
		return err
	}
	if err := c.Quota.Validate(); err != nil {
		return NewInvalidQuotaError(err)
	}
	if c.clock == nil {
		return ErrNilClock
	}
	return nil
}
