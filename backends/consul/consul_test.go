package consul

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/backendtest"
)

func setupConsulTest(t *testing.T) *Backend {
	t.Helper()
	addr := os.Getenv("CONSUL_HTTP_ADDR")
	if addr == "" {
		t.Skip("CONSUL_HTTP_ADDR not set, skipping consul tests")
	}

	storage, err := New(Config{Address: addr, Prefix: "askai-test/"})
	if err != nil {
		t.Skipf("Consul not available, skipping tests: %v", err)
	}
	return storage
}

func TestConsulBackend_Conformance(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		return setupConsulTest(t)
	})
}

func TestConsulBackend_VersionIsModifyIndex(t *testing.T) {
	storage := setupConsulTest(t)
	defer storage.Close()
	ctx := t.Context()
	key := backendtest.Key(t)
	defer storage.Delete(ctx, key)

	ok, err := storage.CheckAndSet(ctx, key, []byte("1"), backends.NoVersion, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, ver, err := storage.Get(ctx, key)
	require.NoError(t, err)

	pair, _, err := storage.GetClient().KV().Get("askai-test/"+key, nil)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, uint64(ver), pair.ModifyIndex)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = backends.Create("consul", "127.0.0.1:8500")
	assert.ErrorIs(t, err, backends.ErrInvalidConfig)
}
