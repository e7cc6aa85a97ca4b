package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/modelarena/feedbackd/internal/port/messagequeue"
	"github.com/modelarena/feedbackd/internal/port/notifier"
)

// fakeNotifier records sent notifications.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
	err  error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_ context.Context, n notifier.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) notifications() []notifier.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifier.Notification(nil), f.sent...)
}

func TestNotifyOnCreated(t *testing.T) {
	fake := &fakeNotifier{}
	svc := NewNotifyService(&mockQueue{}, []notifier.Notifier{fake})

	err := svc.handle(context.Background(), messagequeue.SubjectFeedbackCreated,
		[]byte(`{"feedback_id":"rec-a","at":1}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	sent := fake.notifications()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}
	if sent[0].Event != messagequeue.SubjectFeedbackCreated {
		t.Fatalf("event = %q", sent[0].Event)
	}
}

func TestNotifyUnknownSubjectIgnored(t *testing.T) {
	fake := &fakeNotifier{}
	svc := NewNotifyService(&mockQueue{}, []notifier.Notifier{fake})

	if err := svc.handle(context.Background(), "feedback.mystery", []byte(`{}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(fake.notifications()) != 0 {
		t.Fatal("unknown subject produced a notification")
	}
}

func TestNotifyFailureDoesNotPropagate(t *testing.T) {
	broken := &fakeNotifier{err: errors.New("webhook down")}
	healthy := &fakeNotifier{}
	svc := NewNotifyService(&mockQueue{}, []notifier.Notifier{broken, healthy})

	err := svc.handle(context.Background(), messagequeue.SubjectFeedbackShared,
		[]byte(`{"share_id":"s1","records":3}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(healthy.notifications()) != 1 {
		t.Fatal("healthy channel did not receive the notification")
	}
}

func TestNotifyNoChannelsNoSubscription(t *testing.T) {
	svc := NewNotifyService(&mockQueue{}, nil)
	cancel, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}
