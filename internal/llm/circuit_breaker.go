package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker отключает провайдер после серии ошибок квоты на resetTimeout.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	state        CircuitState
	failures     int
	lastFailure  time.Time
	now          func() time.Time
	mu           sync.RWMutex
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 3
	}
	if resetTimeout == 0 {
		resetTimeout = 5 * time.Minute
	}

	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
		now:          time.Now,
	}
}

// Call runs fn unless the breaker is open. Only errors for which trip returns
// true count as failures; other errors pass through without changing state.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func() error, trip func(error) bool) error {
	cb.mu.Lock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.failures = 0
		} else {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
	}

	cb.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil && trip(err) {
		cb.failures++
		cb.lastFailure = cb.now()

		if cb.failures >= cb.maxFailures || cb.state == StateHalfOpen {
			cb.state = StateOpen
		}

		return err
	}

	if err == nil {
		if cb.state == StateHalfOpen {
			cb.state = StateClosed
		}
		cb.failures = 0
	}

	return err
}

func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
}
