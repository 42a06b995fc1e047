package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/consul"
	"github.com/ajiwo/askailimiter/backends/etcd"
	"github.com/ajiwo/askailimiter/backends/memory"
	"github.com/ajiwo/askailimiter/backends/postgres"
	"github.com/ajiwo/askailimiter/backends/redis"
	"github.com/ajiwo/askailimiter/backends/sqlstore"
	"github.com/ajiwo/askailimiter/backends/zookeeper"
	"github.com/ajiwo/askailimiter/internal/backends/composite"
	"github.com/ajiwo/askailimiter/internal/healthchecker"
)

// backendConfig maps the section for name onto that backend's own Config type
func backendConfig(name string, sc StoreConfig) (any, error) {
	switch name {
	case "memory":
		return memory.Config{CleanupInterval: sc.Memory.CleanupInterval}, nil
	case "redis":
		return redis.Config{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			PoolSize: sc.Redis.PoolSize,
		}, nil
	case "postgres":
		return postgres.Config{
			ConnString: sc.Postgres.DSN,
			Table:      sc.Postgres.Table,
			MaxConns:   sc.Postgres.MaxConns,
		}, nil
	case "sqlite":
		return sqlstore.Config{DSN: sc.SQLite.DSN, Table: sc.SQLite.Table, MaxConns: sc.SQLite.MaxConns}, nil
	case "mysql":
		return sqlstore.Config{DSN: sc.MySQL.DSN, Table: sc.MySQL.Table, MaxConns: sc.MySQL.MaxConns}, nil
	case "etcd":
		return etcd.Config{
			Endpoints:   sc.Etcd.Endpoints,
			DialTimeout: sc.Etcd.DialTimeout,
			Username:    sc.Etcd.Username,
			Password:    sc.Etcd.Password,
			Prefix:      sc.Etcd.Prefix,
		}, nil
	case "consul":
		return consul.Config{
			Address:    sc.Consul.Address,
			Token:      sc.Consul.Token,
			Datacenter: sc.Consul.Datacenter,
			Prefix:     sc.Consul.Prefix,
		}, nil
	case "zookeeper":
		return zookeeper.Config{
			Servers:        sc.Zookeeper.Servers,
			SessionTimeout: sc.Zookeeper.SessionTimeout,
			Root:           sc.Zookeeper.Root,
		}, nil
	default:
		return nil, backends.NewBackendNotFoundError(name)
	}
}

func openBackend(name string, sc StoreConfig) (backends.Backend, error) {
	config, err := backendConfig(name, sc)
	if err != nil {
		return nil, err
	}
	b, err := backends.Create(name, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", name, err)
	}
	return b, nil
}

// openStore opens the primary store and, when failover is configured, wraps
// it together with the secondary in a composite backend.
func openStore(cfg *Config, logger *zap.Logger) (backends.Backend, error) {
	primary, err := openBackend(cfg.Store.Backend, cfg.Store)
	if err != nil {
		return nil, err
	}
	if cfg.Failover.Backend == "" {
		return primary, nil
	}

	secondary, err := openBackend(cfg.Failover.Backend, cfg.Store)
	if err != nil {
		_ = primary.Close()
		return nil, err
	}

	b, err := backends.Create("composite", composite.Config{
		Primary:   primary,
		Secondary: secondary,
		CircuitBreaker: composite.BreakerConfig{
			FailureThreshold: cfg.Failover.FailureThreshold,
			RecoveryTimeout:  cfg.Failover.RecoveryTimeout,
		},
		HealthChecker: healthchecker.Config{
			Interval: cfg.Failover.ProbeInterval,
			Timeout:  cfg.Failover.ProbeTimeout,
		},
		Logger: logger.Named("failover"),
	})
	if err != nil {
		_ = primary.Close()
		_ = secondary.Close()
		return nil, fmt.Errorf("failed to set up failover: %w", err)
	}
	return b, nil
}
