package internal

import "time"

// Params is everything one admission needs besides the backend.
type Params struct {
	Prefix     string
	Limit      uint32
	Window     time.Duration // 0 means a single cumulative counter
	MaxRetries int
	// Expiry attaches a TTL to windowed counters
	Expiry bool
}
