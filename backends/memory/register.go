package memory

import (
	"time"

	"github.com/ajiwo/askailimiter/backends"
)

// Config is the registry configuration for the memory backend
type Config struct {
	CleanupInterval time.Duration
}

func init() {
	backends.Register("memory", func(config any) (backends.Backend, error) {
		switch c := config.(type) {
		case nil:
			return New(), nil
		case Config:
			if c.CleanupInterval == 0 {
				return New(), nil
			}
			return New(WithCleanupInterval(c.CleanupInterval)), nil
		default:
			return nil, backends.NewInvalidConfigError("memory", config)
		}
	})
}
