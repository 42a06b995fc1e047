package backends

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnhealthy is a sentinel used to signal that the backend is unhealthy/unavailable.
var ErrUnhealthy = errors.New("backend unhealthy")

// HealthError wraps a connectivity failure with the operation that hit it,
// e.g. Op="redis:Get". It matches ErrUnhealthy with errors.Is.
type HealthError struct {
	Op    string
	Cause error
}

func (e *HealthError) Error() string {
	if e == nil {
		return ErrUnhealthy.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", ErrUnhealthy, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %v", ErrUnhealthy, e.Cause)
}

func (e *HealthError) Unwrap() error { return e.Cause }

func (e *HealthError) Is(target error) bool {
	return target == ErrUnhealthy
}

// NewHealthError wraps cause as a health error. A nil cause yields ErrUnhealthy.
func NewHealthError(op string, cause error) error {
	if cause == nil {
		return ErrUnhealthy
	}
	return &HealthError{Op: op, Cause: cause}
}

// IsHealthError reports whether err, or anything it wraps, marks the backend as unavailable.
func IsHealthError(err error) bool {
	return errors.Is(err, ErrUnhealthy)
}

// ConnErrorPatterns are lowercase fragments of driver error messages that
// indicate the store cannot be reached. Backends extend it with their own.
var ConnErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"network is unreachable",
	"no such host",
	"i/o timeout",
	"broken pipe",
}

// MaybeConnError classifies err: a match against patterns, or a context
// deadline/cancellation, becomes a HealthError tagged with op. Other errors are
// returned unchanged, as is nil.
func MaybeConnError(op string, err error, patterns []string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewHealthError(op, err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(msg, pattern) {
			return NewHealthError(op, err)
		}
	}
	return err
}
