package sqlstore

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig       = errors.New("sql backend config")
	ErrOpenFailed          = errors.New("failed to open database")
	ErrTableCreationFailed = errors.New("failed to create counter table")

	ErrGetFailed         = errors.New("failed to get key")
	ErrDeleteFailed      = errors.New("failed to delete key")
	ErrCheckAndSetFailed = errors.New("failed to perform check-and-set operation")
	ErrCloseFailed       = errors.New("failed to close database")
)

func NewInvalidConfigError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrInvalidConfig, field)
}

func NewOpenFailedError(driver string, err error) error {
	return fmt.Errorf("%w (%s): %w", ErrOpenFailed, driver, err)
}

func NewTableCreationFailedError(table string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrTableCreationFailed, table, err)
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

func NewCloseFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrCloseFailed, err)
}
