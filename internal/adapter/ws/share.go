// Package ws implements the WebSocket adapter for community share delivery.
//
// A share session's payload is handed over exactly once: the destination
// opens a socket from the configured community origin, announces readiness
// with a "loaded" message, and receives the privacy-stripped payload. Any
// other origin is rejected at accept time and any other message shape is
// ignored.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

// Claimer hands out a share payload at most once.
type Claimer interface {
	Claim(ctx context.Context, shareID string) ([]byte, error)
}

// ShareHandler upgrades share delivery connections.
type ShareHandler struct {
	shares  Claimer
	origin  string // host pattern for the accept check
	timeout time.Duration
}

// NewShareHandler creates a handler that accepts connections only from
// shareOrigin and abandons sessions that stay silent longer than timeout.
func NewShareHandler(shares Claimer, shareOrigin string, timeout time.Duration) (*ShareHandler, error) {
	u, err := url.Parse(shareOrigin)
	if err != nil || u.Host == "" {
		return nil, errors.New("share origin must be an absolute URL")
	}
	return &ShareHandler{shares: shares, origin: u.Host, timeout: timeout}, nil
}

// loadedSignal is the only message shape accepted from the destination.
type loadedSignal struct {
	Type string `json:"type"`
}

// Deliver serves a share delivery socket. The socket lives at most
// h.timeout, so an abandoned share cannot hold a listener open forever.
func (h *ShareHandler) Deliver(w http.ResponseWriter, r *http.Request, shareID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{h.origin},
	})
	if err != nil {
		slog.Warn("share socket rejected", "share_id", shareID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.deliver(ctx, conn, shareID); err != nil {
		slog.Warn("share delivery failed", "share_id", shareID, "error", err)
		_ = conn.Close(websocket.StatusPolicyViolation, "delivery failed")
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "delivered")
}

func (h *ShareHandler) deliver(ctx context.Context, conn *websocket.Conn, shareID string) error {
	// Wait for the one-time readiness signal; anything else is ignored.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var sig loadedSignal
		if err := json.Unmarshal(data, &sig); err != nil || sig.Type != "loaded" {
			continue
		}
		break
	}

	payload, err := h.shares.Claim(ctx, shareID)
	if err != nil {
		return err
	}

	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		// The payload was claimed but not delivered; the session is spent
		// either way (at-most-once).
		return err
	}
	slog.Info("share delivered", "share_id", shareID, "bytes", len(payload))
	return nil
}
