package zookeeper

import "github.com/ajiwo/askailimiter/backends"

func init() {
	backends.Register("zookeeper", func(config any) (backends.Backend, error) {
		zkConfig, ok := config.(Config)
		if !ok {
			return nil, backends.NewInvalidConfigError("zookeeper", config)
		}
		return New(zkConfig)
	})
}
