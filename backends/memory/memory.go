package memory

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ajiwo/askailimiter/backends"
)

// DefaultCleanupInterval is how often the janitor sweeps expired entries
const DefaultCleanupInterval = 10 * time.Minute

type Backend struct {
	locks  sync.Map // map[string]*sync.Mutex
	values sync.Map // map[string]memoryValue

	// versions are drawn from one counter so a recreated key never reuses a token
	lastVersion atomic.Uint64

	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type memoryValue struct {
	value      []byte
	version    backends.Version
	expiration time.Time // zero means no expiry
}

func (v memoryValue) expired(now time.Time) bool {
	return !v.expiration.IsZero() && !now.Before(v.expiration)
}

type options struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// Option configures the memory backend
type Option func(*options)

// WithCleanupInterval sets the janitor interval. Zero or negative disables it;
// expired entries are then only dropped when they are read.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New initializes a new in-memory storage instance.
func New(opts ...Option) *Backend {
	o := options{cleanupInterval: DefaultCleanupInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Backend{now: o.now, stop: make(chan struct{})}
	if o.cleanupInterval > 0 {
		go m.janitor(o.cleanupInterval)
	}
	return m
}

// lockKey acquires the mutex for key. A mutex dropped from the map while
// the caller waited on it is released and the lookup repeated.
func (m *Backend) lockKey(key string) *sync.Mutex {
	for {
		actual, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
		lock := actual.(*sync.Mutex)
		lock.Lock()
		if cur, ok := m.locks.Load(key); ok && cur == lock {
			return lock
		}
		lock.Unlock()
	}
}

// forget drops the value and the mutex of key; the caller holds the key lock.
func (m *Backend) forget(key string) {
	m.values.Delete(key)
	m.locks.Delete(key)
}

// load returns the live entry for key; the caller holds the key lock.
func (m *Backend) load(key string) (memoryValue, bool) {
	valAny, exists := m.values.Load(key)
	if !exists {
		return memoryValue{}, false
	}
	val := valAny.(memoryValue)
	if val.expired(m.now()) {
		m.values.Delete(key)
		return memoryValue{}, false
	}
	return val, true
}

func (m *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, err)
	}

	lock := m.lockKey(key)
	defer lock.Unlock()

	val, ok := m.load(key)
	if !ok {
		return nil, backends.NoVersion, nil
	}
	return slices.Clone(val.value), val.version, nil
}

// CheckAndSet stores value when the current version of key equals expected.
// backends.NoVersion matches only an absent or expired key.
func (m *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, NewCheckAndSetFailedError(key, err)
	}

	lock := m.lockKey(key)
	defer lock.Unlock()

	current := backends.NoVersion
	if val, ok := m.load(key); ok {
		current = val.version
	}
	if current != expected {
		return false, nil
	}

	next := memoryValue{
		value:   slices.Clone(value),
		version: backends.Version(m.lastVersion.Add(1)),
	}
	if ttl > 0 {
		next.expiration = m.now().Add(ttl)
	}
	m.values.Store(key, next)
	return true, nil
}

func (m *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewDeleteFailedError(key, err)
	}

	lock := m.lockKey(key)
	defer lock.Unlock()

	m.forget(key)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (m *Backend) Len() int {
	n := 0
	m.values.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *Backend) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stop:
			return
		}
	}
}

func (m *Backend) cleanup() {
	now := m.now()
	var keysToDelete []string

	// First pass: find expired keys and mutexes left behind by reads of absent keys
	m.locks.Range(func(key, _ any) bool {
		valAny, ok := m.values.Load(key)
		if !ok || valAny.(memoryValue).expired(now) {
			keysToDelete = append(keysToDelete, key.(string))
		}
		return true
	})
	m.values.Range(func(key, valAny any) bool {
		if _, tracked := m.locks.Load(key); !tracked && valAny.(memoryValue).expired(now) {
			keysToDelete = append(keysToDelete, key.(string))
		}
		return true
	})

	// Second pass: delete under the key lock, re-checking in case of a concurrent write
	for _, key := range keysToDelete {
		lock := m.lockKey(key)
		valAny, ok := m.values.Load(key)
		if !ok || valAny.(memoryValue).expired(now) {
			m.forget(key)
		}
		lock.Unlock()
	}
}

// Close stops the janitor and drops all entries
func (m *Backend) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.values.Clear()
	return nil
}
