// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// Store is the port interface for feedback persistence.
type Store interface {
	// ListFeedback returns one page of records ordered by updated_at
	// descending. A limit of 0 means no paging.
	ListFeedback(ctx context.Context, limit, offset int) ([]feedback.Record, error)

	// CountFeedback returns the total number of stored records.
	CountFeedback(ctx context.Context) (int, error)

	// GetFeedback returns a single record by id.
	GetFeedback(ctx context.Context, id string) (*feedback.Record, error)

	// CreateFeedback stores a new record and returns it with its assigned id.
	CreateFeedback(ctx context.Context, r *feedback.Record) (*feedback.Record, error)

	// DeleteFeedback removes exactly the record with the given id.
	DeleteFeedback(ctx context.Context, id string) error

	// ExportFeedback returns every stored record in list order.
	ExportFeedback(ctx context.Context) ([]feedback.Record, error)

	// AdminTokenHash returns the bcrypt hash of the admin API token, or
	// domain.ErrNotFound when none has been set.
	AdminTokenHash(ctx context.Context) ([]byte, error)

	// SetAdminTokenHash stores (or replaces) the admin API token hash.
	SetAdminTokenHash(ctx context.Context, hash []byte) error
}
