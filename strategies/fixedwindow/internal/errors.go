package internal

import (
	"errors"
	"fmt"
)

var (
	ErrStateRetrieval = errors.New("failed to get fixed window counter")
	ErrStateSave      = errors.New("failed to save fixed window counter")
	ErrStateReset     = errors.New("failed to reset fixed window counter")
	ErrContextDone    = errors.New("context canceled or timed out")
)

func NewStateRetrievalError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrStateRetrieval, key, err)
}

func NewStateSaveError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrStateSave, key, err)
}

func NewStateResetError(key string, err error) error {
	return fmt.Errorf("%w '%s': %w", ErrStateReset, key, err)
}

func NewContextCanceledError(err error) error {
	return fmt.Errorf("%w: %w", ErrContextDone, err)
}
