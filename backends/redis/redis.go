package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/scripts"
)

const (
	fieldValue   = "value"
	fieldVersion = "ver"
)

var checkAndSet = redis.NewScript(scripts.CheckAndSetScript)

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int

	// ConnErrorStrings overrides the patterns used to classify connectivity errors
	ConnErrorStrings []string
}

// Backend stores each counter as a hash holding the value and a version number.
type Backend struct {
	client   redis.UniversalClient
	patterns []string
}

// New connects to Redis and verifies the connection with PING.
func New(config Config) (*Backend, error) {
	if config.Addr == "" {
		return nil, NewInvalidConfigError("addr")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, NewConnectionFailedError(config.Addr, err)
	}

	return NewWithClient(client, config.ConnErrorStrings), nil
}

// NewWithClient wraps an existing client. patterns may be nil to use the defaults.
func NewWithClient(client redis.UniversalClient, patterns []string) *Backend {
	if patterns == nil {
		patterns = connErrorStrings
	}
	return &Backend{client: client, patterns: patterns}
}

func (r *Backend) GetClient() redis.UniversalClient {
	return r.client
}

func (r *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	vals, err := r.client.HMGet(ctx, key, fieldValue, fieldVersion).Result()
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("redis:Get", err, r.patterns))
	}

	value, ok := vals[0].(string)
	if !ok {
		return nil, backends.NoVersion, nil
	}
	verStr, _ := vals[1].(string)
	ver, err := strconv.ParseUint(verStr, 10, 64)
	if err != nil {
		return nil, backends.NoVersion, NewInvalidVersionError(key, verStr)
	}
	return []byte(value), backends.Version(ver), nil
}

// CheckAndSet runs the check-and-set Lua script, which bumps the version on success.
func (r *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	var ttlMs int64
	if ttl > 0 {
		ttlMs = max(ttl.Milliseconds(), 1)
	}

	result, err := checkAndSet.Run(ctx, r.client, []string{key},
		strconv.FormatUint(uint64(expected), 10),
		value,
		strconv.FormatInt(ttlMs, 10),
	).Int64()
	if err != nil {
		return false, NewEvalFailedError(key, backends.MaybeConnError("redis:CheckAndSet", err, r.patterns))
	}
	return result == 1, nil
}

func (r *Backend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return NewDeleteFailedError(key, backends.MaybeConnError("redis:Delete", err, r.patterns))
	}
	return nil
}

func (r *Backend) Close() error {
	if err := r.client.Close(); err != nil {
		return NewCloseFailedError(err)
	}
	return nil
}
