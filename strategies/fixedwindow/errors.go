package fixedwindow

import (
	"errors"
	"fmt"
	"time"

	"github.com/ajiwo/askailimiter/strategies"
)

var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid fixed window config")
	ErrInvalidWindow = errors.New("fixed window must be a non-negative whole number of seconds")

	// Strategy option errors
	ErrInvalidKeyPrefix  = errors.New("invalid key prefix")
	ErrInvalidMaxRetries = errors.New("invalid max retries")
)

func NewInvalidWindowError(window time.Duration) error {
	return fmt.Errorf("%w: %w, got %v", ErrInvalidConfig, ErrInvalidWindow, window)
}

func NewInvalidKeyPrefixError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidKeyPrefix, err)
}

func NewInvalidMaxRetriesError(n int) error {
	return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMaxRetries, strategies.MaxRetries, n)
}
