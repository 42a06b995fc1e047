package composite

import (
	"github.com/ajiwo/askailimiter/backends"
)

func init() {
	backends.Register("composite", func(config any) (backends.Backend, error) {
		compositeConfig, ok := config.(Config)
		if !ok {
			return nil, backends.NewInvalidConfigError("composite", config)
		}
		return New(compositeConfig)
	})
}
