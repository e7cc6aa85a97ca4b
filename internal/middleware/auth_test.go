package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubVerifier struct {
	valid string
}

func (v *stubVerifier) VerifyToken(_ context.Context, token string) error {
	if token == v.valid {
		return nil
	}
	return errors.New("invalid token")
}

func authedRequest(t *testing.T, mw func(http.Handler) http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthValidToken(t *testing.T) {
	mw := Auth(&stubVerifier{valid: "secret"}, true)
	if rec := authedRequest(t, mw, "/api/v1/feedback", "secret"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMissingToken(t *testing.T) {
	mw := Auth(&stubVerifier{valid: "secret"}, true)
	if rec := authedRequest(t, mw, "/api/v1/feedback", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthWrongToken(t *testing.T) {
	mw := Auth(&stubVerifier{valid: "secret"}, true)
	if rec := authedRequest(t, mw, "/api/v1/feedback", "nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthDisabled(t *testing.T) {
	mw := Auth(&stubVerifier{valid: "secret"}, false)
	if rec := authedRequest(t, mw, "/api/v1/feedback", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", rec.Code)
	}
}

func TestAuthPublicPaths(t *testing.T) {
	mw := Auth(&stubVerifier{valid: "secret"}, true)

	for _, path := range []string{"/health", "/share/s-1/ws"} {
		if rec := authedRequest(t, mw, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("expected %s to be public, got %d", path, rec.Code)
		}
	}
}
