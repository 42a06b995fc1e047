package internal

import (
	"context"
	"time"

	"github.com/ajiwo/askailimiter/backends"
)

// Reset deletes the counter that is active at now.
func Reset(ctx context.Context, backend backends.Backend, p Params, now time.Time) error {
	key := WindowKey(p.Prefix, now, p.Window)
	if err := backend.Delete(ctx, key); err != nil {
		return NewStateResetError(key, err)
	}
	return nil
}
