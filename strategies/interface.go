package strategies

import (
	"context"
	"time"
)

// Strategy admits or denies requests against counters kept in a backend.
// C is the strategy's own configuration type.
type Strategy[C any] interface {
	// Admit decides on one request at now and, when allowed, records it.
	Admit(ctx context.Context, now time.Time, config C) (Result, error)

	// Peek reports what Admit would decide at now without recording anything.
	Peek(ctx context.Context, now time.Time, config C) (Result, error)

	// Reset removes the counter that is active at now.
	Reset(ctx context.Context, now time.Time, config C) error
}
