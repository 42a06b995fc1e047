// Package backendtest provides a conformance suite for backends.Backend
// implementations. Each backend package runs it from its own tests.
package backendtest

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajiwo/askailimiter/backends"
)

// Factory opens a backend for a single test. The suite closes it.
type Factory func(t *testing.T) backends.Backend

type options struct {
	expiry      bool
	concurrency int
}

// Option adjusts which parts of the suite run
type Option func(*options)

// WithExpiry enables the TTL checks for stores that honor expiration.
func WithExpiry() Option {
	return func(o *options) { o.expiry = true }
}

// WithConcurrency sets the number of goroutines in the lost-update check (default 16).
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// Key returns a key unique to this run so suites can share a live server.
func Key(t *testing.T) string {
	t.Helper()
	return "askai-test:" + uuid.NewString()
}

// Run executes the conformance suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory, opts ...Option) {
	o := options{concurrency: 16}
	for _, opt := range opts {
		opt(&o)
	}

	open := func(t *testing.T) backends.Backend {
		t.Helper()
		b := newBackend(t)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("GetAbsent", func(t *testing.T) {
		b := open(t)
		value, ver, err := b.Get(t.Context(), Key(t))
		require.NoError(t, err)
		assert.Nil(t, value)
		assert.Equal(t, backends.NoVersion, ver)
	})

	t.Run("CreateOnlyIfAbsent", func(t *testing.T) {
		b := open(t)
		ctx := t.Context()
		key := Key(t)

		ok, err := b.CheckAndSet(ctx, key, []byte("1"), backends.NoVersion, 0)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = b.CheckAndSet(ctx, key, []byte("7"), backends.NoVersion, 0)
		require.NoError(t, err)
		assert.False(t, ok, "create must fail once the key exists")

		value, ver, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "1", string(value))
		assert.NotEqual(t, backends.NoVersion, ver)
	})

	t.Run("SwapRequiresCurrentVersion", func(t *testing.T) {
		b := open(t)
		ctx := t.Context()
		key := Key(t)

		ok, err := b.CheckAndSet(ctx, key, []byte("1"), backends.NoVersion, 0)
		require.NoError(t, err)
		require.True(t, ok)

		_, v1, err := b.Get(ctx, key)
		require.NoError(t, err)

		ok, err = b.CheckAndSet(ctx, key, []byte("2"), v1, 0)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = b.CheckAndSet(ctx, key, []byte("99"), v1, 0)
		require.NoError(t, err)
		assert.False(t, ok, "stale version must not win")

		value, v2, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "2", string(value))
		assert.NotEqual(t, v1, v2)
	})

	t.Run("SwapOnAbsentKeyFails", func(t *testing.T) {
		b := open(t)
		ok, err := b.CheckAndSet(t.Context(), Key(t), []byte("1"), backends.Version(4242), 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		b := open(t)
		ctx := t.Context()
		key := Key(t)

		require.NoError(t, b.Delete(ctx, key), "deleting an absent key is not an error")

		ok, err := b.CheckAndSet(ctx, key, []byte("5"), backends.NoVersion, 0)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, b.Delete(ctx, key))

		value, ver, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, value)
		assert.Equal(t, backends.NoVersion, ver)

		ok, err = b.CheckAndSet(ctx, key, []byte("1"), backends.NoVersion, 0)
		require.NoError(t, err)
		assert.True(t, ok, "key can be created again after delete")
	})

	t.Run("NoLostUpdates", func(t *testing.T) {
		b := open(t)
		ctx := t.Context()
		key := Key(t)

		var wg sync.WaitGroup
		errs := make(chan error, o.concurrency)
		for range o.concurrency {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := increment(ctx, b, key); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		value, _, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(o.concurrency), string(value))
	})

	if !o.expiry {
		return
	}

	t.Run("Expiry", func(t *testing.T) {
		if testing.Short() {
			t.Skip("expiry check sleeps")
		}
		b := open(t)
		ctx := t.Context()
		short, long := Key(t), Key(t)

		ok, err := b.CheckAndSet(ctx, short, []byte("1"), backends.NoVersion, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = b.CheckAndSet(ctx, long, []byte("1"), backends.NoVersion, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(2500 * time.Millisecond)

		value, ver, err := b.Get(ctx, short)
		require.NoError(t, err)
		assert.Nil(t, value)
		assert.Equal(t, backends.NoVersion, ver)

		ok, err = b.CheckAndSet(ctx, short, []byte("1"), backends.NoVersion, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok, "an expired key counts as absent for create")

		value, _, err = b.Get(ctx, long)
		require.NoError(t, err)
		assert.Equal(t, "1", string(value))
	})
}

// increment adds one to the decimal counter at key, retrying on conflict.
func increment(ctx context.Context, b backends.Backend, key string) error {
	for {
		raw, ver, err := b.Get(ctx, key)
		if err != nil {
			return err
		}
		n := 0
		if raw != nil {
			if n, err = strconv.Atoi(string(raw)); err != nil {
				return err
			}
		}
		ok, err := b.CheckAndSet(ctx, key, []byte(strconv.Itoa(n+1)), ver, 0)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
