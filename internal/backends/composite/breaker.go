package composite

import (
	"sync/atomic"
	"time"
)

// BreakerState is the circuit breaker state
type BreakerState int32

const (
	StateClosed BreakerState = iota
	StateHalfOpen
	StateOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds configuration for circuit breaker
type BreakerConfig struct {
	FailureThreshold int32         // Consecutive health failures before tripping
	RecoveryTimeout  time.Duration // Time to wait before trying primary again
}

// circuitBreaker counts consecutive health failures of the primary store.
// All fields are accessed atomically.
type circuitBreaker struct {
	config   BreakerConfig // read-only after construction
	state    atomic.Int32
	failures atomic.Int32
	openedAt atomic.Int64 // unix nanos
}

func newCircuitBreaker(config BreakerConfig) *circuitBreaker {
	return &circuitBreaker{config: config}
}

// ShouldTrip records a failed call and reports whether the breaker is now open.
// Only errors marked by backends.IsHealthError count; a half-open breaker
// reopens on the first one.
func (cb *circuitBreaker) ShouldTrip(err error) bool {
	if !isFailure(err) {
		return false
	}

	if cb.State() == StateHalfOpen || cb.failures.Add(1) >= cb.config.FailureThreshold {
		cb.Open()
		return true
	}
	return false
}

// Succeeded records a call that reached the primary without a health failure.
func (cb *circuitBreaker) Succeeded() {
	if cb.State() == StateHalfOpen {
		cb.Close()
		return
	}
	cb.failures.Store(0)
}

// IsOpen returns true while traffic must go to the secondary store.
// Once the recovery timeout has passed it moves to half-open and lets
// calls probe the primary.
func (cb *circuitBreaker) IsOpen() bool {
	if cb.State() != StateOpen {
		return false
	}
	openedAt := time.Unix(0, cb.openedAt.Load())
	if time.Since(openedAt) >= cb.config.RecoveryTimeout &&
		cb.state.CompareAndSwap(int32(StateOpen), int32(StateHalfOpen)) {
		return false
	}
	return cb.State() == StateOpen
}

// Open trips the breaker
func (cb *circuitBreaker) Open() {
	cb.openedAt.Store(time.Now().UnixNano())
	cb.state.Store(int32(StateOpen))
}

// Close resets the breaker
func (cb *circuitBreaker) Close() {
	cb.state.Store(int32(StateClosed))
	cb.failures.Store(0)
}

func (cb *circuitBreaker) State() BreakerState {
	return BreakerState(cb.state.Load())
}

func (cb *circuitBreaker) Failures() int32 {
	return cb.failures.Load()
}
