package memory

import (
	"errors"
	"fmt"
)

var (
	ErrGetFailed         = errors.New("failed to get key")
	ErrDeleteFailed      = errors.New("failed to delete key")
	ErrCheckAndSetFailed = errors.New("failed to perform check-and-set operation")
)

func NewGetFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrGetFailed, key, err)
}

func NewDeleteFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrDeleteFailed, key, err)
}

func NewCheckAndSetFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrCheckAndSetFailed, key, err)
}
