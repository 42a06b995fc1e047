package fixedwindow

import (
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit  uint32 = 200
	DefaultWindow        = 24 * time.Hour
)

// Config is the quota applied to all traffic seen by one limiter.
type Config struct {
	// Limit is the number of requests admitted per window
	Limit uint32
	// Window is the bucket length, a whole number of seconds. Zero means a
	// single cumulative counter that never rolls over.
	Window time.Duration
}

// DefaultConfig returns 200 requests per day.
func DefaultConfig() Config {
	return Config{Limit: DefaultLimit, Window: DefaultWindow}
}

func (c Config) Validate() error {
	if c.Window < 0 {
		return NewInvalidWindowError(c.Window)
	}
	if c.Window%time.Second != 0 {
		return NewInvalidWindowError(c.Window)
	}
	return nil
}

// Cumulative reports whether all requests share one counter.
func (c Config) Cumulative() bool {
	return c.Window == 0
}

// String renders the configuration in the text form ParseConfig reads,
// e.g. "limit=3,window=60". The window is omitted for cumulative configs.
func (c Config) String() string {
	var sb strings.Builder
	sb.WriteString("limit=")
	sb.WriteString(strconv.FormatUint(uint64(c.Limit), 10))
	if !c.Cumulative() {
		sb.WriteString(",window=")
		sb.WriteString(strconv.FormatInt(int64(c.Window/time.Second), 10))
	}
	return sb.String()
}

// configBuilder provides a fluent interface for building configurations
type configBuilder struct {
	config Config
}

// NewConfig starts a builder from DefaultConfig.
func NewConfig() *configBuilder {
	return &configBuilder{config: DefaultConfig()}
}

func (b *configBuilder) WithLimit(limit uint32) *configBuilder {
	b.config.Limit = limit
	return b
}

// WithWindow sets the window length; zero selects cumulative counting.
func (b *configBuilder) WithWindow(window time.Duration) *configBuilder {
	b.config.Window = window
	return b
}

func (b *configBuilder) Build() Config {
	return b.config
}
