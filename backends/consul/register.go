package consul

import "github.com/ajiwo/askailimiter/backends"

func init() {
	backends.Register("consul", func(config any) (backends.Backend, error) {
		consulConfig, ok := config.(Config)
		if !ok {
			return nil, backends.NewInvalidConfigError("consul", config)
		}
		return New(consulConfig)
	})
}
