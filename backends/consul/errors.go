package consul

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("consul backend config")
	ErrConnectionFailed = errors.New("failed to connect to consul")

	ErrGetFailed         = errors.New("failed to get key")
	ErrDeleteFailed      = errors.New("failed to delete key")
	ErrCheckAndSetFailed = errors.New("failed to perform check-and-set operation")
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

func NewCheckAndSetFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrCheckAndSetFailed, key, err)
}
