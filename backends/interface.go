package backends

import (
	"context"
	"time"
)

// Version is an opaque token identifying the state of a stored value at read time.
// Each backend decides how tokens are produced; callers only pass them back to
// CheckAndSet unchanged.
type Version uint64

// NoVersion is the token reported for an absent key. Passing it to CheckAndSet
// means "create the key only if it does not exist".
const NoVersion Version = 0

// Backend is the shared key/value store consumed by the limiter.
// Values are only ever written through CheckAndSet.
type Backend interface {
	// Get returns the stored value and its version.
	// An absent or expired key yields (nil, NoVersion, nil).
	Get(ctx context.Context, key string) ([]byte, Version, error)

	// CheckAndSet stores value under key only if the key's current version equals expected.
	// It reports false without error when the version no longer matches.
	// ttl of zero means the value does not expire.
	CheckAndSet(ctx context.Context, key string, value []byte, expected Version, ttl time.Duration) (bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources used by the backend
	Close() error
}
