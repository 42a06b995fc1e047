package redis

import (
	"github.com/ajiwo/askailimiter/backends"
)

func init() {
	backends.Register("redis", func(config any) (backends.Backend, error) {
		redisConfig, ok := config.(Config)
		if !ok {
			return nil, backends.NewInvalidConfigError("redis", config)
		}
		return New(redisConfig)
	})
}
