package utils

import (
	"errors"
	"fmt"
)

var ErrInvalidString = errors.New("invalid string")

const allowedHint = "Only alphanumeric ASCII, underscore (_), hyphen (-), colon (:), period (.), at (@), and plus (+) are allowed"

// allowedChars is a precomputed table for O(1) character validation
var allowedChars [128]bool

func init() {
	for _, c := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-:.@+" {
		allowedChars[c] = true
	}
}

// ValidationOptions defines the validation rules for a string
type ValidationOptions struct {
	FieldName    string // Name of the field for error messages
	MaxLength    int    // Maximum allowed length
	MinLength    int    // Minimum allowed length (0 means no minimum)
	EmptyAllowed bool
}

// ValidateString validates a string against the given options
func ValidateString(value string, opts ValidationOptions) error {
	if len(value) == 0 {
		if opts.EmptyAllowed {
			return nil
		}
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidString, opts.FieldName)
	}

	if opts.MinLength > 0 && len(value) < opts.MinLength {
		return fmt.Errorf("%w: %s must be at least %d characters, got %d", ErrInvalidString, opts.FieldName, opts.MinLength, len(value))
	}
	if opts.MaxLength > 0 && len(value) > opts.MaxLength {
		return fmt.Errorf("%w: %s cannot exceed %d bytes, got %d bytes", ErrInvalidString, opts.FieldName, opts.MaxLength, len(value))
	}

	for i, r := range value {
		if r >= 128 || !allowedChars[r] {
			return fmt.Errorf("%w: %s contains invalid character '%c' at position %d. %s",
				ErrInvalidString, opts.FieldName, r, i, allowedHint)
		}
	}
	return nil
}

// ValidateKeyPrefix validates the prefix counters are stored under. The
// window suffix is appended after a colon, so the prefix itself must not
// end with one.
func ValidateKeyPrefix(prefix string) error {
	err := ValidateString(prefix, ValidationOptions{
		FieldName: "key prefix",
		MaxLength: 48,
		MinLength: 1,
	})
	if err != nil {
		return err
	}
	if prefix[len(prefix)-1] == ':' {
		return fmt.Errorf("%w: key prefix cannot end with ':'", ErrInvalidString)
	}
	return nil
}
