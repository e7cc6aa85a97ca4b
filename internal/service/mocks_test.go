package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
	"github.com/modelarena/feedbackd/internal/port/messagequeue"
)

// mockStore is an in-memory database.Store.
type mockStore struct {
	mu      sync.Mutex
	records []feedback.Record
	hash    []byte

	listErr   error
	exportErr error
	nextID    int

	exportCalls int
}

func (m *mockStore) ListFeedback(_ context.Context, limit, offset int) ([]feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	if offset >= len(m.records) {
		return nil, nil
	}
	out := m.records[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return append([]feedback.Record(nil), out...), nil
}

func (m *mockStore) CountFeedback(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return 0, m.listErr
	}
	return len(m.records), nil
}

func (m *mockStore) GetFeedback(_ context.Context, id string) (*feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateFeedback(_ context.Context, r *feedback.Record) (*feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *r
	if cp.ID == "" {
		cp.ID = "rec-" + strconv.Itoa(m.nextID)
	}
	cp.CreatedAt = time.Now().Unix()
	cp.UpdatedAt = cp.CreatedAt
	m.records = append(m.records, cp)
	return &cp, nil
}

func (m *mockStore) DeleteFeedback(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ExportFeedback(context.Context) ([]feedback.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exportCalls++
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return append([]feedback.Record(nil), m.records...), nil
}

func (m *mockStore) AdminTokenHash(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hash == nil {
		return nil, domain.ErrNotFound
	}
	return m.hash, nil
}

func (m *mockStore) SetAdminTokenHash(_ context.Context, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hash = hash
	return nil
}

// mockQueue records published messages.
type mockQueue struct {
	mu        sync.Mutex
	published []string
	pubErr    error
}

func (m *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pubErr != nil {
		return m.pubErr
	}
	m.published = append(m.published, subject)
	return nil
}

func (m *mockQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

func (m *mockQueue) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.published...)
}

// mockCache is a TTL-less in-memory cache.Cache.
type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
