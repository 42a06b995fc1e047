package etcd

import "github.com/ajiwo/askailimiter/backends"

func init() {
	backends.Register("etcd", func(config any) (backends.Backend, error) {
		etcdConfig, ok := config.(Config)
		if !ok {
			return nil, backends.NewInvalidConfigError("etcd", config)
		}
		return New(etcdConfig)
	})
}
