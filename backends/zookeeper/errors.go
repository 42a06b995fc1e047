package zookeeper

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("zookeeper backend config")
	ErrConnectionFailed = errors.New("failed to connect to zookeeper")

	ErrGetFailed         = errors.New("failed to get key")
	ErrDeleteFailed      = errors.New("failed to delete key")
	ErrCheckAndSetFailed = errors.New("failed to perform check-and-set operation")
)

func NewInvalidConfigError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrInvalidConfig, field)
}

func NewConnectionFailedError(servers []string, err error) error {
	return fmt.Errorf("%w at %v: %w", ErrConnectionFailed, servers, err)
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
