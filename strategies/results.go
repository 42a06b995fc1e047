package strategies

import (
	"time"
)

// Decision is the outcome of an admission check
type Decision int

const (
	Allow Decision = iota
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Result represents the result of an admission check
type Result struct {
	Decision  Decision
	Key       string    // Counter key the decision was made on
	Count     uint32    // Stored count after the decision
	Limit     uint32    // Configured quota
	Remaining uint32    // Requests left in the current window
	Reset     time.Time // End of the current window, zero for cumulative counters

	// FailOpen is set when the request was admitted without the counter being
	// reliably read or updated.
	FailOpen bool
}

// Allowed reports whether the request may proceed.
func (r Result) Allowed() bool {
	return r.Decision == Allow
}

// RetryAfter returns how long a denied caller should wait before the window
// rolls over. It is zero for allowed results and for cumulative counters.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() || r.Reset.IsZero() {
		return 0
	}
	return max(r.Reset.Sub(now), 0)
}
