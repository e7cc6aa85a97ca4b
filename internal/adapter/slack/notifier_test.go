package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelarena/feedbackd/internal/port/notifier"
)

func TestSendPostsBlockKitMessage(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), notifier.Notification{
		Title:   "New feedback received",
		Message: "Feedback record `rec-a` was ingested.",
		Level:   "info",
		Event:   "feedback.created",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(got.Blocks))
	}
	if got.Blocks[0].Type != "header" || !strings.Contains(got.Blocks[0].Text.Text, "New feedback received") {
		t.Fatalf("header block = %+v", got.Blocks[0])
	}
	if !strings.Contains(got.Blocks[2].Text.Text, "feedback.created") {
		t.Fatalf("context block = %+v", got.Blocks[2])
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	if err := n.Send(context.Background(), notifier.Notification{Title: "x"}); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestSendUnconfigured(t *testing.T) {
	n := NewNotifier("")
	err := n.Send(context.Background(), notifier.Notification{Title: "x"})
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}
