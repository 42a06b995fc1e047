package backends

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendNotFound is returned when attempting to create a backend with an unknown name.
	ErrBackendNotFound = errors.New("backend not found")

	// ErrInvalidConfig is returned when the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid backend configuration")
)

// NewInvalidConfigError reports a factory called with the wrong configuration type.
func NewInvalidConfigError(name string, config any) error {
	return fmt.Errorf("%w: %s backend cannot use %T", ErrInvalidConfig, name, config)
}

// NewBackendNotFoundError reports an unknown backend name.
func NewBackendNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrBackendNotFound, name)
}
