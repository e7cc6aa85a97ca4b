package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenVerifier validates an admin API token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) error
}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health": true,
}

// publicPrefixes are path prefixes exempt from authentication. Share delivery
// sockets are authenticated by origin check and share-session id instead.
var publicPrefixes = []string{
	"/share/",
}

// Auth returns middleware that validates the admin bearer token. When
// authEnabled is false all requests pass (development only).
func Auth(verifier TokenVerifier, authEnabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authEnabled || exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "authorization required")
				return
			}
			if err := verifier.VerifyToken(r.Context(), token); err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func exempt(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
