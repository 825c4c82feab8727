package circuitbreaker

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// ErrOpen is returned by Do when the circuit is open and the call is skipped.
var ErrOpen = errors.New("circuit breaker open")

// Breaker provides fast-fail behavior when a dependency fails repeatedly.
// Closed circuits pass every call through; after failureThreshold consecutive
// failures the circuit opens and calls fail immediately until the timeout
// elapses, at which point a half-open probe is allowed.
type Breaker struct {
	state            atomic.Value
	failureCount     atomic.Int32
	successCount     atomic.Int32
	lastFailureTime  atomic.Value
	failureThreshold int32
	successThreshold int32
	timeout          time.Duration
	mu               sync.RWMutex
	onStateChange    func(from, to State)
}

// New creates a circuit breaker
func New(failureThreshold, successThreshold int32, timeout time.Duration) *Breaker {
	b := &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		onStateChange:    func(_, _ State) {},
	}
	b.state.Store(StateClosed)
	return b
}

// OnStateChange registers a callback for state transitions
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Do runs fn through the breaker, recording the outcome. When the circuit is
// open, fn is not called and ErrOpen is returned.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	if err := fn(); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

// GetState returns the current state
func (b *Breaker) GetState() State {
	return b.state.Load().(State)
}

func (b *Breaker) recordSuccess() {
	switch b.GetState() {
	case StateHalfOpen:
		b.successCount.Add(1)
		if b.successCount.Load() >= b.successThreshold {
			b.setState(StateClosed)
			b.failureCount.Store(0)
			b.successCount.Store(0)
		}
	case StateClosed:
		b.failureCount.Store(0)
	}
}

func (b *Breaker) recordFailure() {
	now := time.Now()
	b.lastFailureTime.Store(&now)

	switch b.GetState() {
	case StateClosed:
		b.failureCount.Add(1)
		if b.failureCount.Load() >= b.failureThreshold {
			b.setState(StateOpen)
			b.failureCount.Store(0)
			b.successCount.Store(0)
		}
	case StateHalfOpen:
		b.setState(StateOpen)
		b.failureCount.Store(0)
		b.successCount.Store(0)
	}
}

func (b *Breaker) allow() bool {
	switch b.GetState() {
	case StateClosed, StateHalfOpen:
		return true
	}
	lastFailure, ok := b.lastFailureTime.Load().(*time.Time)
	if !ok || lastFailure == nil {
		return false
	}
	if time.Since(*lastFailure) > b.timeout {
		b.setState(StateHalfOpen)
		b.failureCount.Store(0)
		b.successCount.Store(0)
		return true
	}
	return false
}

func (b *Breaker) setState(newState State) {
	oldState := b.GetState()
	if oldState == newState {
		return
	}
	b.state.Store(newState)
	b.mu.RLock()
	fn := b.onStateChange
	b.mu.RUnlock()
	if fn != nil {
		fn(oldState, newState)
	}
}
