package resilience

import (
	"errors"
	"testing"
	"time"
)

var errTest = errors.New("service unavailable")

func TestClosedBreakerRunsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)
	called := false
	if err := b.Do(func() error { called = true; return nil }); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
	if b.State() != "closed" {
		t.Fatalf("state = %s", b.State())
	}
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { return errTest })
	}

	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if b.State() != "open" {
		t.Fatalf("state = %s", b.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(2, time.Second)

	_ = b.Do(func() error { return errTest })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return errTest })

	// Two failures split by a success must not trip the breaker.
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestProbeAfterCooldown(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Do(func() error { return errTest })
	}
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}

	now = now.Add(2 * time.Second)
	if b.State() != "half-open" {
		t.Fatalf("state = %s", b.State())
	}

	// Probe succeeds: circuit closes.
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if b.State() != "closed" {
		t.Fatalf("state after probe = %s", b.State())
	}
}

func TestFailedProbeReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Do(func() error { return errTest })
	}
	now = now.Add(2 * time.Second)

	if err := b.Do(func() error { return errTest }); !errors.Is(err, errTest) {
		t.Fatalf("probe: %v", err)
	}
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("after failed probe: got %v, want ErrOpen", err)
	}
}
