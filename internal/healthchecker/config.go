package healthchecker

import "time"

// DefaultProbeKey is read on each probe. It never needs to exist.
const DefaultProbeKey = "askai:healthz"

// Config holds configuration for health checking
type Config struct {
	Interval time.Duration // Probe frequency, zero disables probing
	Timeout  time.Duration // Per-probe timeout
	ProbeKey string
}

// DefaultConfig returns a health checker config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
		Timeout:  2 * time.Second,
		ProbeKey: DefaultProbeKey,
	}
}
