package service

import (
	"context"
	"errors"
	"testing"

	"github.com/modelarena/feedbackd/internal/domain"
)

func TestSetAndVerifyToken(t *testing.T) {
	store := &mockStore{}
	svc := NewAuthService(store)

	if err := svc.SetToken(context.Background(), "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short token: got %v, want ErrValidation", err)
	}

	const token = "correct-horse-battery"
	if err := svc.SetToken(context.Background(), token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	if err := svc.VerifyToken(context.Background(), token); err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if err := svc.VerifyToken(context.Background(), "wrong-token-entirely"); err == nil {
		t.Fatal("wrong token verified")
	}
}

func TestVerifyTokenUnconfigured(t *testing.T) {
	svc := NewAuthService(&mockStore{})

	if err := svc.VerifyToken(context.Background(), "anything-at-all"); err == nil {
		t.Fatal("verify succeeded with no token configured")
	}
}

func TestVerifyTokenUsesCache(t *testing.T) {
	store := &mockStore{}
	svc := NewAuthService(store)

	const token = "correct-horse-battery"
	if err := svc.SetToken(context.Background(), token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := svc.VerifyToken(context.Background(), token); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// Drop the stored hash; the verifier still accepts the last-good token
	// without a round trip.
	store.mu.Lock()
	store.hash = nil
	store.mu.Unlock()

	if err := svc.VerifyToken(context.Background(), token); err != nil {
		t.Fatalf("cached verify: %v", err)
	}

	// A near-miss of the cached token must never ride the fast path,
	// regardless of length.
	for _, wrong := range []string{"correct-horse-batterz", "correct-horse", token + "x"} {
		if err := svc.VerifyToken(context.Background(), wrong); err == nil {
			t.Fatalf("token %q verified against cache", wrong)
		}
	}
}
