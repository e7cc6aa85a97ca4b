//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/modelarena/feedbackd/internal/adapter/postgres"
	"github.com/modelarena/feedbackd/internal/domain"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := postgres.NewStore(testPool)

	if _, err := testPool.Exec(ctx, "DELETE FROM admin_token"); err != nil {
		t.Fatalf("clear admin_token: %v", err)
	}

	if _, err := store.AdminTokenHash(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty table: got %v, want ErrNotFound", err)
	}

	first := []byte("$2a$10$first-hash")
	if err := store.SetAdminTokenHash(ctx, first); err != nil {
		t.Fatalf("SetAdminTokenHash: %v", err)
	}
	got, err := store.AdminTokenHash(ctx)
	if err != nil {
		t.Fatalf("AdminTokenHash: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Fatalf("hash = %q, want %q", got, first)
	}

	// The singleton row is replaced, never duplicated.
	second := []byte("$2a$10$second-hash")
	if err := store.SetAdminTokenHash(ctx, second); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	got, err = store.AdminTokenHash(ctx)
	if err != nil {
		t.Fatalf("AdminTokenHash after rotate: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Fatalf("hash = %q, want %q", got, second)
	}

	var count int
	if err := testPool.QueryRow(ctx, "SELECT count(*) FROM admin_token").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("admin_token has %d rows, want 1", count)
	}
}
