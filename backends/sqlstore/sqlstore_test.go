package sqlstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/backends/backendtest"
)

func setupSQLiteTest(t *testing.T) *Backend {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "askai.db")
	storage, err := New(Config{Driver: DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	return storage
}

func TestSQLiteBackend_Conformance(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		return setupSQLiteTest(t)
	}, backendtest.WithExpiry())
}

func TestMySQLBackend_Conformance(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set, skipping mysql tests")
	}
	backendtest.Run(t, func(t *testing.T) backends.Backend {
		storage, err := New(Config{Driver: DriverMySQL, DSN: dsn, Table: "askai_kv_test"})
		if err != nil {
			t.Skipf("MySQL not available, skipping tests: %v", err)
		}
		return storage
	}, backendtest.WithExpiry())
}

func TestBackend_ExpiredRowIsTakenOver(t *testing.T) {
	storage := setupSQLiteTest(t)
	defer storage.Close()
	ctx := t.Context()

	now := time.Unix(1_700_000_000, 0)
	storage.now = func() time.Time { return now }

	ok, err := storage.CheckAndSet(ctx, "k", []byte("200"), backends.NoVersion, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	_, v1, err := storage.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	value, ver, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Equal(t, backends.NoVersion, ver)

	ok, err = storage.CheckAndSet(ctx, "k", []byte("1"), v1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "swap against an expired row must fail")

	ok, err = storage.CheckAndSet(ctx, "k", []byte("1"), backends.NoVersion, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	value, v2, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
	assert.Greater(t, v2, v1)

	var rows int
	require.NoError(t, storage.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM askai_kv").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown driver", Config{Driver: "oracle", DSN: "x"}},
		{"empty dsn", Config{Driver: DriverSQLite}},
		{"bad table", Config{Driver: DriverSQLite, DSN: "x.db", Table: "kv; DROP TABLE users"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRegistry(t *testing.T) {
	b, err := backends.Create("sqlite", filepath.Join(t.TempDir(), "reg.db"))
	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &Backend{}, b)

	_, err = backends.Create("mysql", 42)
	assert.ErrorIs(t, err, backends.ErrInvalidConfig)
}
