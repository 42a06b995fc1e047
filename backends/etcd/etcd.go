package etcd

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ajiwo/askailimiter/backends"
)

const DefaultPrefix = "/askai/"

type Config struct {
	Endpoints   []string
	DialTimeout time.Duration
	Username    string
	Password    string
	// Prefix is prepended to every key (default "/askai/")
	Prefix string

	ConnErrorStrings []string
}

// Backend uses the key's ModRevision as its version. A TTL on create attaches
// a fresh lease; later writes keep that lease.
type Backend struct {
	client   *clientv3.Client
	prefix   string
	patterns []string
}

func New(config Config) (*Backend, error) {
	if len(config.Endpoints) == 0 {
		return nil, NewInvalidConfigError("endpoints")
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		Username:    config.Username,
		Password:    config.Password,
	})
	if err != nil {
		return nil, NewConnectionFailedError(config.Endpoints, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if _, err := client.Status(ctx, config.Endpoints[0]); err != nil {
		client.Close()
		return nil, NewConnectionFailedError(config.Endpoints, err)
	}

	patterns := config.ConnErrorStrings
	if len(patterns) == 0 {
		patterns = connErrorStrings
	}
	return &Backend{client: client, prefix: config.Prefix, patterns: patterns}, nil
}

func (e *Backend) GetClient() *clientv3.Client {
	return e.client
}

func (e *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	resp, err := e.client.Get(ctx, e.prefix+key)
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("etcd:Get", err, e.patterns))
	}
	if len(resp.Kvs) == 0 {
		return nil, backends.NoVersion, nil
	}
	kv := resp.Kvs[0]
	value := kv.Value
	if value == nil {
		value = []byte{}
	}
	return value, backends.Version(kv.ModRevision), nil
}

func (e *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	k := e.prefix + key

	var opts []clientv3.OpOption
	var lease clientv3.LeaseID
	switch {
	case ttl <= 0:
	case expected != backends.NoVersion:
		// The lease granted on create is kept for the key's lifetime.
		opts = append(opts, clientv3.WithIgnoreLease())
	default:
		// etcd leases count whole seconds
		seconds := max(int64((ttl+time.Second-1)/time.Second), 1)
		grant, err := e.client.Grant(ctx, seconds)
		if err != nil {
			return false, NewLeaseFailedError(key, backends.MaybeConnError("etcd:Grant", err, e.patterns))
		}
		lease = grant.ID
		opts = append(opts, clientv3.WithLease(lease))
	}

	cmp := clientv3.Compare(clientv3.ModRevision(k), "=", int64(expected))
	if expected == backends.NoVersion {
		cmp = clientv3.Compare(clientv3.CreateRevision(k), "=", 0)
	}

	resp, err := e.client.Txn(ctx).
		If(cmp).
		Then(clientv3.OpPut(k, string(value), opts...)).
		Commit()
	if err != nil || !resp.Succeeded {
		if lease != clientv3.NoLease {
			_, _ = e.client.Revoke(context.WithoutCancel(ctx), lease)
		}
	}
	if err != nil {
		return false, NewTxnFailedError(key, backends.MaybeConnError("etcd:Txn", err, e.patterns))
	}
	return resp.Succeeded, nil
}

func (e *Backend) Delete(ctx context.Context, key string) error {
	if _, err := e.client.Delete(ctx, e.prefix+key); err != nil {
		return NewDeleteFailedError(key, backends.MaybeConnError("etcd:Delete", err, e.patterns))
	}
	return nil
}

func (e *Backend) Close() error {
	if err := e.client.Close(); err != nil {
		return NewCloseFailedError(err)
	}
	return nil
}
