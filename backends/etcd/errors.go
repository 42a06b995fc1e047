package etcd

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("etcd backend config")
	ErrConnectionFailed = errors.New("failed to connect to etcd")

	ErrGetFailed    = errors.New("failed to get key")
	ErrDeleteFailed = errors.New("failed to delete key")
	ErrTxnFailed    = errors.New("failed to commit check-and-set transaction")
	ErrLeaseFailed  = errors.New("failed to grant lease")
	ErrCloseFailed  = errors.New("failed to close etcd client")
)

func NewInvalidConfigError(field string) error {
	return fmt.Errorf("%w: invalid %s", ErrInvalidConfig, field)
}

func NewConnectionFailedError(endpoints []string, err error) error {
	return fmt.Errorf("%w at %v: %w", ErrConnectionFailed, endpoints, err)
}

func NewGetFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrGetFailed, key, err)
}

func NewDeleteFailedError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrDeleteFailed, key, err)
}

func NewTxnFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrTxnFailed, key, err)
}

func NewLeaseFailedError(key string, err error) error {
	return fmt.Errorf("%w for key '%s': %w", ErrLeaseFailed, key, err)
}

func NewCloseFailedError(err error) error {
	return fmt.Errorf("%w: %w", ErrCloseFailed, err)
}
