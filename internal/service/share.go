package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	feedbackotel "github.com/modelarena/feedbackd/internal/adapter/otel"
	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
	"github.com/modelarena/feedbackd/internal/port/messagequeue"
)

// shareSession is one pending outbound delivery. The payload is serialized at
// creation time so later mutations of the store never leak into an open share.
type shareSession struct {
	payload   []byte
	records   int
	createdAt time.Time
	delivered bool
	expire    *time.Timer
}

// ShareService prepares stripped feedback exports for one-time delivery to
// the community window. Each session lives until it is claimed once or its
// TTL elapses, whichever comes first.
type ShareService struct {
	feedback *FeedbackService
	queue    messagequeue.Queue
	metrics  *feedbackotel.Metrics
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*shareSession
}

// NewShareService creates a new ShareService.
func NewShareService(fb *FeedbackService, queue messagequeue.Queue, metrics *feedbackotel.Metrics, ttl time.Duration) *ShareService {
	return &ShareService{
		feedback: fb,
		queue:    queue,
		metrics:  metrics,
		ttl:      ttl,
		sessions: make(map[string]*shareSession),
	}
}

// SharePrepared describes a newly opened share session.
type SharePrepared struct {
	ShareID   string        `json:"share_id"`
	Records   int           `json:"records"`
	ExpiresIn time.Duration `json:"expires_in"`
}

// Prepare snapshots the full record set, strips the privacy-sensitive fields
// from every record, and opens a session the community window can claim.
func (s *ShareService) Prepare(ctx context.Context) (*SharePrepared, error) {
	records, err := s.feedback.exportAll(ctx)
	if err != nil {
		return nil, err
	}
	stripped := feedback.StripAll(records)

	payload, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("marshal share payload: %w", err)
	}

	id := uuid.NewString()
	_, span := feedbackotel.StartShareSpan(ctx, id, len(stripped))
	defer span.End()

	sess := &shareSession{
		payload:   payload,
		records:   len(stripped),
		createdAt: time.Now(),
	}
	sess.expire = time.AfterFunc(s.ttl, func() { s.Expire(id) })

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.metrics.SharesOpened.Add(ctx, 1)
	return &SharePrepared{ShareID: id, Records: len(stripped), ExpiresIn: s.ttl}, nil
}

// Claim hands out a session's payload exactly once. A second claim, or a
// claim after expiry, fails with ErrShareClosed; an unknown id fails with
// ErrNotFound.
func (s *ShareService) Claim(ctx context.Context, shareID string) ([]byte, error) {
	s.mu.Lock()
	sess, ok := s.sessions[shareID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("share session %s: %w", shareID, domain.ErrNotFound)
	}
	if sess.delivered {
		s.mu.Unlock()
		return nil, fmt.Errorf("share session %s: %w", shareID, domain.ErrShareClosed)
	}
	sess.delivered = true
	sess.expire.Stop()
	delete(s.sessions, shareID)
	payload := sess.payload
	records := sess.records
	s.mu.Unlock()

	s.metrics.SharesDelivered.Add(ctx, 1)
	s.publishShared(ctx, shareID, records)
	return payload, nil
}

// Expire drops a session that was never claimed. Safe to call for ids that
// are already gone.
func (s *ShareService) Expire(shareID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[shareID]
	if !ok {
		return
	}
	sess.expire.Stop()
	delete(s.sessions, shareID)
}

// Open reports whether a session is still claimable.
func (s *ShareService) Open(shareID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[shareID]
	return ok && !sess.delivered
}

type shareEvent struct {
	ShareID string `json:"share_id"`
	Records int    `json:"records"`
	At      int64  `json:"at"`
}

func (s *ShareService) publishShared(ctx context.Context, shareID string, records int) {
	data, err := json.Marshal(shareEvent{ShareID: shareID, Records: records, At: time.Now().Unix()})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectFeedbackShared, data); err != nil {
		slog.Warn("publish share event failed", "subject", messagequeue.SubjectFeedbackShared, "error", err)
	}
}
