// Package resilience provides failure handling for flaky upstream providers.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of a circuit breaker.
type State string

const (
	StateClosed   State = "CLOSED"    // Normal operation
	StateOpen     State = "OPEN"      // Failing, rejecting requests
	StateHalfOpen State = "HALF_OPEN" // Probing whether the provider recovered
)

// ErrOpen is returned when the circuit is open and calls are rejected
// without touching the provider.
var ErrOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int
	// SuccessThreshold is the number of successes in half-open state to close.
	SuccessThreshold int
	// Cooldown is how long to wait before transitioning from open to half-open.
	Cooldown time.Duration
}

// DefaultBreakerConfig returns sensible defaults for quote providers.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// Breaker implements the circuit breaker pattern around provider calls. A
// run of failures opens the circuit so subsequent calls fail fast instead
// of burning retries against a dead provider.
type Breaker struct {
	name   string
	config BreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time

	totalCalls    int64
	totalFailures int64
	totalRejected int64
}

// NewBreaker creates a circuit breaker.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	return &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

// Do runs fn under the breaker. When the circuit is open it returns
// ErrOpen without invoking fn.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) > b.config.Cooldown {
			b.transition(StateHalfOpen)
		} else {
			b.totalRejected++
			return ErrOpen
		}
	}

	b.totalCalls++
	return nil
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(StateClosed)
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailures++
	b.lastFailure = time.Now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(state State) {
	b.state = state
	b.failures = 0
	b.successes = 0
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// Stats returns a snapshot of the breaker counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		Name:          b.name,
		State:         b.state,
		TotalCalls:    b.totalCalls,
		TotalFailures: b.totalFailures,
		TotalRejected: b.totalRejected,
	}
}

// Reset forces the breaker back to closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
}

// BreakerStats holds breaker counters.
type BreakerStats struct {
	Name          string
	State         State
	TotalCalls    int64
	TotalFailures int64
	TotalRejected int64
}
