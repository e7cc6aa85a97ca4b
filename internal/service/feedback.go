package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	feedbackotel "github.com/modelarena/feedbackd/internal/adapter/otel"
	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
	"github.com/modelarena/feedbackd/internal/port/cache"
	"github.com/modelarena/feedbackd/internal/port/database"
	"github.com/modelarena/feedbackd/internal/port/messagequeue"
)

const exportCacheKey = "export:full"

// Page is one page of the feedback table.
type Page struct {
	Items    []feedback.Record `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
}

// ExportArtifact is a built export file.
type ExportArtifact struct {
	Filename string
	Data     []byte
}

// FeedbackService implements the feedback table operations: paginated
// listing, ingest, delete and full export.
type FeedbackService struct {
	db       database.Store
	queue    messagequeue.Queue
	cache    cache.Cache
	metrics  *feedbackotel.Metrics
	pageSize int

	// Bounds concurrent export builds; an export serializes the whole table.
	exportSem *semaphore.Weighted
	exportTTL time.Duration
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(db database.Store, queue messagequeue.Queue, c cache.Cache, metrics *feedbackotel.Metrics, pageSize int, maxConcurrentExports int64, exportTTL time.Duration) *FeedbackService {
	if pageSize < 1 {
		pageSize = 10
	}
	if maxConcurrentExports < 1 {
		maxConcurrentExports = 1
	}
	return &FeedbackService{
		db:        db,
		queue:     queue,
		cache:     c,
		metrics:   metrics,
		pageSize:  pageSize,
		exportSem: semaphore.NewWeighted(maxConcurrentExports),
		exportTTL: exportTTL,
	}
}

// List returns one page of records, newest first. Pages are 1-based.
func (s *FeedbackService) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.db.CountFeedback(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.db.ListFeedback(ctx, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []feedback.Record{}
	}

	return &Page{Items: items, Page: page, PageSize: s.pageSize, Total: total}, nil
}

// Get returns a single record.
func (s *FeedbackService) Get(ctx context.Context, id string) (*feedback.Record, error) {
	return s.db.GetFeedback(ctx, id)
}

// Create ingests a new feedback record.
func (s *FeedbackService) Create(ctx context.Context, r *feedback.Record) (*feedback.Record, error) {
	if r.Data.ModelID == "" {
		return nil, fmt.Errorf("%w: data.model_id is required", domain.ErrValidation)
	}

	created, err := s.db.CreateFeedback(ctx, r)
	if err != nil {
		return nil, err
	}

	s.metrics.FeedbackCreated.Add(ctx, 1)
	s.publishEvent(ctx, messagequeue.SubjectFeedbackCreated, created.ID)
	s.invalidateExport(ctx)
	return created, nil
}

// Delete removes exactly the record with the given id. On store failure
// nothing changes; the caller surfaces the error.
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	if err := s.db.DeleteFeedback(ctx, id); err != nil {
		return err
	}

	s.metrics.FeedbackDeleted.Add(ctx, 1)
	s.publishEvent(ctx, messagequeue.SubjectFeedbackDeleted, id)
	s.invalidateExport(ctx)
	return nil
}

// Export builds the full unredacted export artifact, named with the build
// timestamp. Recent builds are served from cache; concurrent builds are
// bounded so a burst of export requests cannot saturate the store.
func (s *FeedbackService) Export(ctx context.Context) (*ExportArtifact, error) {
	now := time.Now()
	filename := fmt.Sprintf("feedback-history-export-%d.json", now.UnixMilli())

	if data, ok, err := s.cache.Get(ctx, exportCacheKey); err == nil && ok {
		return &ExportArtifact{Filename: filename, Data: data}, nil
	}

	if err := s.exportSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire export slot: %w", err)
	}
	defer s.exportSem.Release(1)

	records, err := s.db.ExportFeedback(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []feedback.Record{}
	}

	ctx, span := feedbackotel.StartExportSpan(ctx, len(records))
	defer span.End()

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	if err := s.cache.Set(ctx, exportCacheKey, data, s.exportTTL); err != nil {
		slog.Warn("export cache set failed", "error", err)
	}

	s.metrics.Exports.Add(ctx, 1)
	s.metrics.ExportDuration.Record(ctx, time.Since(now).Seconds())
	s.publishEvent(ctx, messagequeue.SubjectFeedbackExported, "")
	return &ExportArtifact{Filename: filename, Data: data}, nil
}

// exportAll returns every record, bypassing the artifact cache. Analysis
// snapshot loads and share payloads use it.
func (s *FeedbackService) exportAll(ctx context.Context) ([]feedback.Record, error) {
	records, err := s.db.ExportFeedback(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []feedback.Record{}
	}
	return records, nil
}

// auditEvent is the payload published for feedback audit events.
type auditEvent struct {
	FeedbackID string `json:"feedback_id,omitempty"`
	At         int64  `json:"at"`
}

// publishEvent publishes best-effort: audit events never fail the operation.
func (s *FeedbackService) publishEvent(ctx context.Context, subject, feedbackID string) {
	data, err := json.Marshal(auditEvent{FeedbackID: feedbackID, At: time.Now().Unix()})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("audit event publish failed", "subject", subject, "error", err)
	}
}

func (s *FeedbackService) invalidateExport(ctx context.Context) {
	if err := s.cache.Delete(ctx, exportCacheKey); err != nil {
		slog.Warn("export cache invalidation failed", "error", err)
	}
}
