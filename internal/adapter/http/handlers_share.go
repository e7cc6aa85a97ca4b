package http

import (
	"net/http"
)

// PrepareShare builds a privacy-stripped share payload and opens a one-time
// delivery session for the community window.
func (h *Handlers) PrepareShare(w http.ResponseWriter, r *http.Request) {
	prepared, err := h.share.Prepare(r.Context())
	if err != nil {
		writeDomainError(w, err, "share session not found")
		return
	}
	writeJSON(w, http.StatusCreated, prepared)
}

// ShareSocket upgrades the community window's delivery connection. The
// origin check and at-most-once handover live in the WebSocket adapter.
func (h *Handlers) ShareSocket(w http.ResponseWriter, r *http.Request) {
	h.shareWS.Deliver(w, r, urlParam(r, "id"))
}
