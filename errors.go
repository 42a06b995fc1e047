package askailimiter

import (
	"errors"
	"fmt"

	"github.com/ajiwo/askailimiter/strategies"
)

var (
	ErrInvalidKeyPrefix  = errors.New("invalid key prefix")
	ErrInvalidMaxRetries = errors.New("invalid max retries")
	ErrInvalidQuota      = errors.New("invalid quota")
	ErrNilBackend        = errors.New("storage backend cannot be nil")
	ErrNilClock          = errors.New("clock cannot be nil")
)

func NewInvalidKeyPrefixError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidKeyPrefix, err)
}

func NewInvalidMaxRetriesError(n int) error {
	return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMaxRetries, strategies.MaxRetries, n)
}

func NewInvalidQuotaError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidQuota, err)
}
