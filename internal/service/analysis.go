package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	feedbackotel "github.com/modelarena/feedbackd/internal/adapter/otel"
	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/analysis"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// View is the renderable state of an analysis session: the summary stats
// fixed at load time plus the records matching the current filter.
type View struct {
	ID      string            `json:"id"`
	Visible bool              `json:"visible"`
	State   analysis.State    `json:"state"`
	Stats   feedback.Stats    `json:"stats"`
	Records []feedback.Record `json:"records"`
}

// RecordDetail is the expanded per-record view: the record itself plus its
// formatted transcript.
type RecordDetail struct {
	Record     feedback.Record `json:"record"`
	Title      string          `json:"title"`
	Transcript []feedback.Turn `json:"transcript"`
}

// AnalysisService owns the analysis sessions. A session's snapshot is
// populated once when first shown, retained across visibility toggles, and
// replaced wholesale on refresh. Sessions idle longer than the snapshot TTL
// are discarded by the cleanup loop.
type AnalysisService struct {
	feedback *FeedbackService
	metrics  *feedbackotel.Metrics
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*analysis.Session
	lastUsed map[string]time.Time
}

// NewAnalysisService creates a new AnalysisService. A ttl of 0 disables
// session expiry.
func NewAnalysisService(fb *FeedbackService, metrics *feedbackotel.Metrics, ttl time.Duration) *AnalysisService {
	return &AnalysisService{
		feedback: fb,
		metrics:  metrics,
		ttl:      ttl,
		sessions: make(map[string]*analysis.Session),
		lastUsed: make(map[string]time.Time),
	}
}

// StartCleanup spawns a goroutine that discards idle sessions every
// interval. Returns a cancel function that stops the goroutine.
func (s *AnalysisService) StartCleanup(interval time.Duration) func() {
	if s.ttl <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
	return cancel
}

func (s *AnalysisService) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, used := range s.lastUsed {
		if used.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.lastUsed, id)
		}
	}
}

// Open creates a new visible session and populates its snapshot.
func (s *AnalysisService) Open(ctx context.Context) (*View, error) {
	sess := analysis.New(uuid.NewString())
	sess.Show()

	records, err := s.feedback.exportAll(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.SetSnapshot(records)
	s.sessions[sess.ID] = sess
	s.lastUsed[sess.ID] = time.Now()
	s.metrics.AnalysisLoads.Add(ctx, 1)
	return snapshotView(sess), nil
}

// Show makes the session visible, populating the snapshot only when it is
// still empty. Repeat toggles reuse the retained snapshot.
func (s *AnalysisService) Show(ctx context.Context, id string) (*View, error) {
	s.mu.Lock()
	sess, ok := s.session(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	needLoad := sess.Show()
	s.mu.Unlock()

	if !needLoad {
		s.mu.Lock()
		defer s.mu.Unlock()
		return snapshotView(sess), nil
	}

	records, err := s.feedback.exportAll(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.SetSnapshot(records)
	s.metrics.AnalysisLoads.Add(ctx, 1)
	return snapshotView(sess), nil
}

// Hide flips the session invisible without discarding its snapshot.
func (s *AnalysisService) Hide(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(id)
	if !ok {
		return fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	sess.Hide()
	return nil
}

// Get returns the current view of a session.
func (s *AnalysisService) Get(id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(id)
	if !ok {
		return nil, fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	return snapshotView(sess), nil
}

// SetFilter updates the session's filter state and returns the view computed
// freshly from the original snapshot.
func (s *AnalysisService) SetFilter(id string, mode feedback.Mode, query string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(id)
	if !ok {
		return nil, fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	if err := sess.SetFilter(mode, query); err != nil {
		return nil, err
	}
	return snapshotView(sess), nil
}

// Refresh re-fetches the full export and replaces the snapshot wholesale,
// keeping the active filter. When refreshes overlap, only the most recently
// requested one may apply; stale responses are discarded.
func (s *AnalysisService) Refresh(ctx context.Context, id string) (*View, error) {
	s.mu.Lock()
	sess, ok := s.session(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	gen := sess.BeginRefresh()
	s.mu.Unlock()

	ctx, span := feedbackotel.StartRefreshSpan(ctx, id, gen)
	defer span.End()

	records, err := s.feedback.exportAll(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.CompleteRefresh(gen, records) {
		s.metrics.AnalysisLoads.Add(ctx, 1)
	}
	return snapshotView(sess), nil
}

// Record returns the expanded detail for one snapshot record, including its
// formatted transcript. Missing snapshots degrade to the placeholder turn.
func (s *AnalysisService) Record(id, recordID string) (*RecordDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.session(id)
	if !ok {
		return nil, fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	r, ok := sess.Find(recordID)
	if !ok {
		return nil, fmt.Errorf("analysis record %s: %w", recordID, domain.ErrNotFound)
	}
	return &RecordDetail{
		Record:     r,
		Title:      r.Title(),
		Transcript: feedback.FormatTranscript(r.Messages()),
	}, nil
}

// Close discards a session entirely.
func (s *AnalysisService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("analysis session %s: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	delete(s.lastUsed, id)
	return nil
}

// session returns a live session and refreshes its idle timestamp; callers
// hold the service lock.
func (s *AnalysisService) session(id string) (*analysis.Session, bool) {
	sess, ok := s.sessions[id]
	if ok {
		s.lastUsed[id] = time.Now()
	}
	return sess, ok
}

// snapshotView builds a View; callers hold the service lock.
func snapshotView(sess *analysis.Session) *View {
	return &View{
		ID:      sess.ID,
		Visible: sess.Visible,
		State:   sess.State(),
		Stats:   sess.Stats(),
		Records: sess.View(),
	}
}
