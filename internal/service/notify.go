package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelarena/feedbackd/internal/port/messagequeue"
	"github.com/modelarena/feedbackd/internal/port/notifier"
	"github.com/modelarena/feedbackd/internal/resilience"
)

// notifyChannel pairs a notifier with its circuit breaker so one dead
// webhook endpoint cannot slow down every event.
type notifyChannel struct {
	notifier notifier.Notifier
	breaker  *resilience.Breaker
}

// NotifyService fans feedback audit events out to the configured
// notification channels.
type NotifyService struct {
	queue    messagequeue.Queue
	channels []notifyChannel
}

// NewNotifyService creates a NotifyService delivering to the given channels.
func NewNotifyService(queue messagequeue.Queue, channels []notifier.Notifier) *NotifyService {
	s := &NotifyService{queue: queue}
	for _, n := range channels {
		s.channels = append(s.channels, notifyChannel{
			notifier: n,
			breaker:  resilience.NewBreaker(5, 30*time.Second),
		})
	}
	return s
}

// Start subscribes to the feedback audit subjects. The returned cancel
// function stops the subscription.
func (s *NotifyService) Start(ctx context.Context) (func(), error) {
	if len(s.channels) == 0 {
		return func() {}, nil
	}
	return s.queue.Subscribe(ctx, "feedback.>", s.handle)
}

func (s *NotifyService) handle(ctx context.Context, subject string, data []byte) error {
	n, ok := buildNotification(subject, data)
	if !ok {
		return nil
	}

	for _, ch := range s.channels {
		err := ch.breaker.Do(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return ch.notifier.Send(sendCtx, n)
		})
		if err != nil {
			slog.Warn("notification delivery failed",
				"channel", ch.notifier.Name(),
				"event", subject,
				"breaker", ch.breaker.State(),
				"error", err,
			)
		}
	}
	return nil
}

func buildNotification(subject string, data []byte) (notifier.Notification, bool) {
	var event struct {
		FeedbackID string `json:"feedback_id"`
		ShareID    string `json:"share_id"`
		Records    int    `json:"records"`
	}
	// Payload shape varies per subject; unknown fields are simply absent.
	_ = json.Unmarshal(data, &event)

	switch subject {
	case messagequeue.SubjectFeedbackCreated:
		return notifier.Notification{
			Title:   "New feedback received",
			Message: fmt.Sprintf("Feedback record `%s` was ingested.", event.FeedbackID),
			Level:   "info",
			Event:   subject,
		}, true
	case messagequeue.SubjectFeedbackDeleted:
		return notifier.Notification{
			Title:   "Feedback deleted",
			Message: fmt.Sprintf("Feedback record `%s` was removed.", event.FeedbackID),
			Level:   "warning",
			Event:   subject,
		}, true
	case messagequeue.SubjectFeedbackExported:
		return notifier.Notification{
			Title:   "Feedback exported",
			Message: "A full feedback history export was built.",
			Level:   "info",
			Event:   subject,
		}, true
	case messagequeue.SubjectFeedbackShared:
		return notifier.Notification{
			Title:   "Feedback shared",
			Message: fmt.Sprintf("%d stripped records were delivered to the community window.", event.Records),
			Level:   "success",
			Event:   subject,
		}, true
	default:
		return notifier.Notification{}, false
	}
}
