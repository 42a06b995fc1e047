package postgres

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig     = errors.New("postgres backend config")
	ErrInvalidConnString = errors.New("invalid postgres connection string")
	ErrInvalidPoolConfig = errors.New("invalid postgres pool configuration")

	// Connection errors
	ErrPingFailed         = errors.New("failed to ping postgres server")
	ErrPoolCreationFailed = errors.New("failed to create connection pool")

	ErrTableCreationFailed = errors.New("failed to create counter table")

	// Operation errors
	ErrGetFailed         = errors.New("failed to get key")
	ErrDeleteFailed      = errors.New("failed to delete key")
	ErrCheckAndSetFailed = errors.New("failed to perform check-and-set operation")
)

func NewInvalidConfigError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrInvalidConfig, field)
}

func NewInvalidConnStringError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidConnString, err)
}

func NewInvalidPoolConfigError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPoolConfig, reason)
}

func NewPingFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrPingFailed, err)
}

func NewPoolCreationFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrPoolCreationFailed, err)
}

func NewTableCreationFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrTableCreationFailed, err)
}

func NewGetFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s' from postgres: %w", ErrGetFailed, key, err)
}

func NewDeleteFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s' from postgres: %w", ErrDeleteFailed, key, err)
}

func NewCheckAndSetFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrCheckAndSetFailed, key, err)
}
