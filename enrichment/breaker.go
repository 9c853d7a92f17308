package enrichment

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker stops hammering the lookup API while it is failing hard.
// After failureThreshold consecutive transport/5xx failures the breaker
// opens and Fetch short-circuits to network_error; after cooldown it lets
// probe calls through and closes again once successThreshold of them
// succeed.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	lastFailure      time.Time
}

// NewCircuitBreaker returns a breaker that opens after 5 consecutive
// failures, probes again after 30 seconds and closes after 2 successes.
func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: 5,
		successThreshold: 2,
		cooldown:         30 * time.Second,
	}
}

// CanProceed reports whether a request may be attempted right now.
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(cb.lastFailure) > cb.cooldown {
			cb.state = breakerHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	case breakerHalfOpen:
		return true
	default:
		return false
	}
}

// RecordSuccess notes a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		cb.failureCount = 0
	case breakerHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = breakerClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

// RecordFailure notes a transport failure or server error.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()
	switch cb.state {
	case breakerClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = breakerOpen
		}
	case breakerHalfOpen:
		cb.state = breakerOpen
		cb.failureCount = cb.failureThreshold
		cb.successCount = 0
	}
}

// State returns the breaker state for logging.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}
