package http

import (
	"context"
	"net/http"

	"github.com/modelarena/feedbackd/internal/adapter/ws"
	"github.com/modelarena/feedbackd/internal/service"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connected reports queue connectivity.
type Connected interface {
	IsConnected() bool
}

// Handlers bundles the HTTP handlers and their service dependencies.
type Handlers struct {
	feedback *service.FeedbackService
	analysis *service.AnalysisService
	share    *service.ShareService
	shareWS  *ws.ShareHandler

	db    Pinger
	queue Connected
}

// NewHandlers creates the handler set.
func NewHandlers(
	feedback *service.FeedbackService,
	analysis *service.AnalysisService,
	share *service.ShareService,
	shareWS *ws.ShareHandler,
	db Pinger,
	queue Connected,
) *Handlers {
	return &Handlers{
		feedback: feedback,
		analysis: analysis,
		share:    share,
		shareWS:  shareWS,
		db:       db,
		queue:    queue,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Queue    string `json:"queue"`
}

// Health reports service health. Degraded dependencies flip the status but
// the endpoint itself stays 200 so probes can tell "down" from "degraded".
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", Queue: "ok"}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}
	if h.queue != nil && !h.queue.IsConnected() {
		resp.Status = "degraded"
		resp.Queue = "disconnected"
	}

	writeJSON(w, http.StatusOK, resp)
}
