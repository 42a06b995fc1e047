package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeyPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		errorMsg string
	}{
		{name: "default prefix", prefix: "askai"},
		{name: "namespaced prefix", prefix: "edge-eu:askai"},
		{name: "empty", prefix: "", errorMsg: "key prefix cannot be empty"},
		{name: "too long", prefix: strings.Repeat("a", 49), errorMsg: "cannot exceed 48 bytes"},
		{name: "spaces", prefix: "ask ai", errorMsg: "invalid character ' ' at position 3"},
		{name: "non ascii", prefix: "askaï", errorMsg: "invalid character"},
		{name: "trailing colon", prefix: "askai:", errorMsg: "cannot end with ':'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeyPrefix(tt.prefix)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidString)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateString_Options(t *testing.T) {
	assert.NoError(t, ValidateString("", ValidationOptions{FieldName: "x", EmptyAllowed: true}))
	assert.Error(t, ValidateString("ab", ValidationOptions{FieldName: "x", MinLength: 3}))
	assert.NoError(t, ValidateString("a.b", ValidationOptions{FieldName: "x"}))
	assert.ErrorIs(t, ValidateString("abcd", ValidationOptions{FieldName: "x", MaxLength: 3}), ErrInvalidString)
}
