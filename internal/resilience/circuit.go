// Package resilience provides retry with backoff and a circuit breaker
// for calls to model providers and fetched websites.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// CircuitState is the breaker's position.
type CircuitState int

const (
	// CircuitClosed lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests until the reset timeout passes.
	CircuitOpen
	// CircuitHalfOpen lets probe requests test whether the service
	// recovered.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned for requests rejected by an open circuit.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitBreakerConfig controls when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	// FailureThreshold is the run of failures that opens the circuit.
	// Default: 5.
	FailureThreshold int

	// ResetTimeout is the open period before probing again. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxProbes is how many probes must succeed before the
	// circuit closes. Default: 1.
	HalfOpenMaxProbes int

	// ShouldTrip filters which errors count as failures. Nil counts
	// every non-nil error.
	ShouldTrip func(err error) bool

	// OnStateChange observes transitions.
	OnStateChange func(from, to CircuitState)
}

// CircuitBreaker guards one downstream service.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	state    CircuitState
	failures int
	probeOKs int
	lastTrip time.Time
	clock    func() time.Time
}

// NewCircuitBreaker builds a breaker, filling zero config fields with
// defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = 1
	}
	return &CircuitBreaker{cfg: cfg, clock: time.Now}
}

// ExecuteVal runs fn through the breaker, returning ErrCircuitOpen
// without calling fn when the circuit is open.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !cb.allow() {
		return zero, ErrCircuitOpen
	}
	val, err := fn(ctx)
	cb.record(err)
	return val, err
}

// Execute is ExecuteVal for functions without a return value.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := ExecuteVal(ctx, cb, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// State returns the effective state, accounting for an elapsed reset
// timeout.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.clock().Sub(cb.lastTrip) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// Reset forces the circuit closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	prev := cb.state
	cb.state = CircuitClosed
	cb.failures = 0
	cb.probeOKs = 0
	if prev != CircuitClosed && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(prev, CircuitClosed)
	}
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen {
		if cb.clock().Sub(cb.lastTrip) < cb.cfg.ResetTimeout {
			return false
		}
		cb.transition(CircuitHalfOpen)
	}
	return true
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	counts := cb.cfg.ShouldTrip
	if counts == nil {
		counts = func(e error) bool { return e != nil }
	}

	if err == nil || !counts(err) {
		switch cb.state {
		case CircuitHalfOpen:
			cb.probeOKs++
			if cb.probeOKs >= cb.cfg.HalfOpenMaxProbes {
				cb.transition(CircuitClosed)
				cb.failures = 0
				cb.probeOKs = 0
			}
		case CircuitClosed:
			cb.failures = 0
		}
		return
	}

	cb.failures++
	cb.lastTrip = cb.clock()

	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		// One failed probe reopens the circuit.
		cb.transition(CircuitOpen)
		cb.probeOKs = 0
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(from, to)
	}
}
