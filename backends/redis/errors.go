package redis

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig    = errors.New("redis backend config")
	ErrConnectionFailed = errors.New("failed to connect to redis")

	// Operation errors
	ErrGetFailed      = errors.New("failed to get key")
	ErrDeleteFailed   = errors.New("failed to delete key")
	ErrCloseFailed    = errors.New("failed to close redis connection")
	ErrEvalFailed     = errors.New("failed to evaluate check-and-set script")
	ErrInvalidVersion = errors.New("invalid stored version")
)

func NewInvalidConfigError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrInvalidConfig, field)
}

func NewConnectionFailedError(addr string, err error) error {
	return fmt.Errorf("%w at %s: %w", ErrConnectionFailed, addr, err)
}

func NewGetFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrGetFailed, key, err)
}

func NewDeleteFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrDeleteFailed, key, err)
}

func NewCloseFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrCloseFailed, err)
}

func NewEvalFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrEvalFailed, key, err)
}

func NewInvalidVersionError(key, raw string) error {
	return fmt.Errorf("%w %q for key '%s'", ErrInvalidVersion, raw, key)
}
