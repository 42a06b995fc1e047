// Package composite routes store calls to a primary backend and fails over to
// a secondary one while the primary is unhealthy.
package composite

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/internal/healthchecker"
)

// secondaryTag marks versions handed out by the secondary store. A token is
// only ever accepted by the store that issued it.
const secondaryTag backends.Version = 1 << 63

// Backend provides automatic failover between two stores.
//
// Counters are not copied between stores: after a failover the secondary
// starts from whatever it holds for the key, usually nothing.
type Backend struct {
	primary       backends.Backend
	secondary     backends.Backend
	breaker       *circuitBreaker
	healthChecker *healthchecker.Checker
	logger        *zap.Logger
}

var _ backends.Backend = (*Backend)(nil)

// New creates a composite backend and starts probing the primary
func New(config Config) (*Backend, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Backend{
		primary:   config.Primary,
		secondary: config.Secondary,
		breaker:   newCircuitBreaker(config.CircuitBreaker),
		logger:    config.Logger,
	}
	c.healthChecker = healthchecker.New(c.primary, c.onPrimaryHealthy,
		healthchecker.WithConfig(config.HealthChecker),
		healthchecker.WithLogger(config.Logger.Named("healthcheck")),
	)
	c.healthChecker.Start()

	return c, nil
}

// Get reads from the active store. Versions from the secondary are tagged.
func (c *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	if c.breaker.IsOpen() {
		return c.getSecondary(ctx, key)
	}

	value, ver, err := c.primary.Get(ctx, key)
	if c.tripped(err) {
		return c.getSecondary(ctx, key)
	}
	c.settle(err)
	return value, ver, err
}

func (c *Backend) getSecondary(ctx context.Context, key string) ([]byte, backends.Version, error) {
	value, ver, err := c.secondary.Get(ctx, key)
	if err != nil || ver == backends.NoVersion {
		return value, ver, err
	}
	return value, ver | secondaryTag, nil
}

// CheckAndSet writes to the active store. A version issued by the other store
// never matches, so a caller that read before a failover re-reads.
func (c *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	if c.breaker.IsOpen() {
		return c.casSecondary(ctx, key, value, expected, ttl)
	}
	if fromSecondary(expected) {
		return false, nil
	}

	ok, err := c.primary.CheckAndSet(ctx, key, value, expected, ttl)
	if c.tripped(err) {
		if expected == backends.NoVersion {
			return c.casSecondary(ctx, key, value, expected, ttl)
		}
		return false, nil
	}
	c.settle(err)
	return ok, err
}

func (c *Backend) casSecondary(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	if expected != backends.NoVersion && !fromSecondary(expected) {
		return false, nil
	}
	return c.secondary.CheckAndSet(ctx, key, value, expected&^secondaryTag, ttl)
}

func fromSecondary(v backends.Version) bool {
	return v&secondaryTag != 0
}

// Delete removes key from the active store
func (c *Backend) Delete(ctx context.Context, key string) error {
	if c.breaker.IsOpen() {
		return c.secondary.Delete(ctx, key)
	}

	err := c.primary.Delete(ctx, key)
	if c.tripped(err) {
		return c.secondary.Delete(ctx, key)
	}
	c.settle(err)
	return err
}

// Close stops health monitoring and closes both backends
func (c *Backend) Close() error {
	c.healthChecker.Stop()
	return errors.Join(c.primary.Close(), c.secondary.Close())
}

func (c *Backend) tripped(err error) bool {
	if !c.breaker.ShouldTrip(err) {
		return false
	}
	c.logger.Warn("primary store unavailable, failing over", zap.Error(err))
	return true
}

func (c *Backend) settle(err error) {
	if !isFailure(err) {
		c.breaker.Succeeded()
	}
}

// onPrimaryHealthy is called when the health checker reaches the primary
func (c *Backend) onPrimaryHealthy() {
	if c.breaker.State() == StateOpen {
		c.breaker.Close()
		c.logger.Info("primary store recovered")
	}
}

// State returns the circuit breaker state
func (c *Backend) State() BreakerState {
	return c.breaker.State()
}

// Active reports which store currently serves calls: "primary" or "secondary".
func (c *Backend) Active() string {
	if c.breaker.State() == StateOpen {
		return "secondary"
	}
	return "primary"
}

// FailureCount returns the consecutive primary failure count
func (c *Backend) FailureCount() int32 {
	return c.breaker.Failures()
}
