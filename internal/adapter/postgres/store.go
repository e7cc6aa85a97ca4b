package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const recordColumns = `id, data, user_info, browser_id, snapshot, meta, created_at, updated_at`

func (s *Store) ListFeedback(ctx context.Context, limit, offset int) ([]feedback.Record, error) {
	q := `SELECT ` + recordColumns + ` FROM feedback ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var result []feedback.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) CountFeedback(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

func (s *Store) GetFeedback(ctx context.Context, id string) (*feedback.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM feedback WHERE id = $1`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get feedback %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get feedback %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) CreateFeedback(ctx context.Context, r *feedback.Record) (*feedback.Record, error) {
	dataJSON, err := json.Marshal(r.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback data: %w", err)
	}
	userJSON, err := marshalNullable(r.User)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback user: %w", err)
	}
	snapshotJSON, err := marshalNullable(r.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback snapshot: %w", err)
	}
	metaJSON, err := marshalNullable(r.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback meta: %w", err)
	}

	created := *r
	var createdAt, updatedAt time.Time
	err = s.pool.QueryRow(ctx,
		`INSERT INTO feedback (data, user_info, browser_id, snapshot, meta)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		dataJSON, userJSON, r.BrowserID, snapshotJSON, metaJSON,
	).Scan(&created.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	created.CreatedAt = createdAt.Unix()
	created.UpdatedAt = updatedAt.Unix()
	return &created, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete feedback %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ExportFeedback(ctx context.Context) ([]feedback.Record, error) {
	return s.ListFeedback(ctx, 0, 0)
}

func (s *Store) AdminTokenHash(ctx context.Context) ([]byte, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx, `SELECT token_hash FROM admin_token WHERE id = TRUE`).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("admin token: %w", err)
	}
	return hash, nil
}

func (s *Store) SetAdminTokenHash(ctx context.Context, hash []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admin_token (id, token_hash, updated_at) VALUES (TRUE, $1, now())
		 ON CONFLICT (id) DO UPDATE SET token_hash = EXCLUDED.token_hash, updated_at = now()`,
		hash)
	if err != nil {
		return fmt.Errorf("set admin token: %w", err)
	}
	return nil
}

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (feedback.Record, error) {
	var (
		r            feedback.Record
		dataJSON     []byte
		userJSON     []byte
		snapshotJSON []byte
		metaJSON     []byte
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&r.ID, &dataJSON, &userJSON, &r.BrowserID, &snapshotJSON, &metaJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan feedback: %w", err)
	}

	if err := json.Unmarshal(dataJSON, &r.Data); err != nil {
		return r, fmt.Errorf("decode feedback data: %w", err)
	}
	if err := unmarshalNullable(userJSON, &r.User); err != nil {
		return r, fmt.Errorf("decode feedback user: %w", err)
	}
	if err := unmarshalNullable(snapshotJSON, &r.Snapshot); err != nil {
		return r, fmt.Errorf("decode feedback snapshot: %w", err)
	}
	if err := unmarshalNullable(metaJSON, &r.Meta); err != nil {
		return r, fmt.Errorf("decode feedback meta: %w", err)
	}

	r.CreatedAt = createdAt.Unix()
	r.UpdatedAt = updatedAt.Unix()
	return r, nil
}

// marshalNullable encodes v, mapping nil pointers to SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// unmarshalNullable decodes data into *dst, leaving it nil for SQL NULL.
func unmarshalNullable[T any](data []byte, dst **T) error {
	if len(data) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
