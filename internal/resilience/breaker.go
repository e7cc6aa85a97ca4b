// Package resilience provides reliability patterns for outbound calls.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the circuit breaker is rejecting calls.
var ErrOpen = errors.New("circuit open")

// Breaker is a circuit breaker for outbound webhook and network calls. It
// opens after a run of consecutive failures and rejects calls until a
// cooldown elapses; the first call after the cooldown probes the dependency
// and either closes the circuit or reopens it.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time // stubbed in tests
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for the given cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Do runs fn unless the circuit is open, in which case it returns ErrOpen
// without calling fn.
func (b *Breaker) Do(fn func() error) error {
	if !b.admit() {
		return ErrOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.probing || b.failures >= b.threshold {
			b.openedAt = b.now()
		}
		b.probing = false
		return err
	}
	b.failures = 0
	b.openedAt = time.Time{}
	b.probing = false
	return nil
}

// State reports "closed", "open" or "half-open" for logging.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.openedAt.IsZero():
		return "closed"
	case b.now().Sub(b.openedAt) >= b.cooldown:
		return "half-open"
	default:
		return "open"
	}
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openedAt.IsZero() {
		return true
	}
	if b.now().Sub(b.openedAt) >= b.cooldown {
		// Half-open: let one probe through.
		b.probing = true
		return true
	}
	return false
}
