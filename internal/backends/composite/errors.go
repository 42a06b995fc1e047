package composite

import (
	"errors"
	"fmt"

	"github.com/ajiwo/askailimiter/backends"
)

var (
	ErrNoPrimary   = errors.New("composite: primary backend is required")
	ErrNoSecondary = errors.New("composite: secondary backend is required")
	ErrSameBackend = errors.New("composite: primary and secondary must differ")
)

func newConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: composite: %s", backends.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// isFailure reports whether err counts against the primary store
func isFailure(err error) bool {
	return err != nil && backends.IsHealthError(err)
}
