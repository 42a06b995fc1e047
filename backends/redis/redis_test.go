package redis

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/backendtest"
)

func setupRedisTest(t *testing.T) *Backend {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis tests")
	}

	storage, err := New(Config{Addr: addr})
	if err != nil {
		t.Skipf("Redis not available, skipping tests: %v", err)
	}
	return storage
}

func TestRedisBackend_Conformance(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		return setupRedisTest(t)
	}, backendtest.WithExpiry())
}

func TestRedisBackend_StoresDecimalValueInHash(t *testing.T) {
	storage := setupRedisTest(t)
	defer storage.Close()
	ctx := t.Context()
	key := backendtest.Key(t)
	defer storage.Delete(ctx, key)

	ok, err := storage.CheckAndSet(ctx, key, []byte("3"), backends.NoVersion, 0)
	require.NoError(t, err)
	require.True(t, ok)

	fields, err := storage.GetClient().HGetAll(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"value": "3", "ver": "1"}, fields)

	ttl, err := storage.GetClient().PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Negative(t, ttl, "zero ttl leaves the key persistent")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = backends.Create("redis", "localhost:6379")
	assert.ErrorIs(t, err, backends.ErrInvalidConfig)
}

func TestConnErrorStrings(t *testing.T) {
	assert.Contains(t, connErrorStrings, "connection refused")
	assert.Contains(t, connErrorStrings, "pool timeout")
	assert.NotContains(t, connErrorStrings, "wrongtype")
}
