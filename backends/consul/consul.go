package consul

import (
	"context"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/ajiwo/askailimiter/backends"
)

const DefaultPrefix = "askai/"

type Config struct {
	Address    string
	Token      string
	Datacenter string
	// Prefix is prepended to every key (default "askai/")
	Prefix string

	ConnErrorStrings []string
}

// Backend maps versions onto the KV ModifyIndex. Consul KV entries have no
// per-key expiry, so the TTL argument is not applied and old window keys stay
// until removed with Delete.
type Backend struct {
	client   *api.Client
	kv       *api.KV
	prefix   string
	patterns []string
}

func New(config Config) (*Backend, error) {
	if config.Address == "" {
		return nil, NewInvalidConfigError("address")
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	consulConfig := api.DefaultConfig()
	consulConfig.Address = config.Address
	consulConfig.Token = config.Token
	consulConfig.Datacenter = config.Datacenter

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, NewConnectionFailedError(config.Address, err)
	}
	if _, err := client.Status().Leader(); err != nil {
		return nil, NewConnectionFailedError(config.Address, err)
	}

	patterns := config.ConnErrorStrings
	if len(patterns) == 0 {
		patterns = connErrorStrings
	}
	return &Backend{client: client, kv: client.KV(), prefix: config.Prefix, patterns: patterns}, nil
}

func (c *Backend) GetClient() *api.Client {
	return c.client
}

func (c *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	pair, _, err := c.kv.Get(c.prefix+key, (&api.QueryOptions{RequireConsistent: true}).WithContext(ctx))
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("consul:Get", err, c.patterns))
	}
	if pair == nil {
		return nil, backends.NoVersion, nil
	}
	value := pair.Value
	if value == nil {
		value = []byte{}
	}
	return value, backends.Version(pair.ModifyIndex), nil
}

// CheckAndSet uses the KV check-and-set mode. A ModifyIndex of 0 only
// succeeds when the key does not exist.
func (c *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, _ time.Duration) (bool, error) {
	pair := &api.KVPair{
		Key:         c.prefix + key,
		Value:       value,
		ModifyIndex: uint64(expected),
	}
	ok, _, err := c.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return false, NewCheckAndSetFailedError(key, backends.MaybeConnError("consul:CAS", err, c.patterns))
	}
	return ok, nil
}

func (c *Backend) Delete(ctx context.Context, key string) error {
	if _, err := c.kv.Delete(c.prefix+key, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return NewDeleteFailedError(key, backends.MaybeConnError("consul:Delete", err, c.patterns))
	}
	return nil
}

// Close is a no-op; the HTTP client holds no long-lived session.
func (c *Backend) Close() error {
	return nil
}
