// Package service contains the application services that orchestrate the
// feedback domain against the storage, cache, queue and telemetry adapters.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/port/database"
)

// AuthService validates the admin API token against its bcrypt hash in the
// store. The last successfully verified token is cached so the hot path does
// not pay the bcrypt cost on every request.
type AuthService struct {
	db database.Store

	mu       sync.Mutex
	lastGood string
}

// NewAuthService creates a new AuthService.
func NewAuthService(db database.Store) *AuthService {
	return &AuthService{db: db}
}

// VerifyToken checks the presented token against the stored hash.
func (s *AuthService) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	cached := s.lastGood
	s.mu.Unlock()
	if cached != "" && subtle.ConstantTimeCompare([]byte(cached), []byte(token)) == 1 {
		return nil
	}

	hash, err := s.db.AdminTokenHash(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("no admin token configured")
		}
		return fmt.Errorf("load admin token: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
		return errors.New("token mismatch")
	}

	s.mu.Lock()
	s.lastGood = token
	s.mu.Unlock()
	return nil
}

// SetToken replaces the admin API token.
func (s *AuthService) SetToken(ctx context.Context, token string) error {
	if len(token) < 12 {
		return fmt.Errorf("%w: token must be at least 12 characters", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	if err := s.db.SetAdminTokenHash(ctx, hash); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastGood = ""
	s.mu.Unlock()
	return nil
}
