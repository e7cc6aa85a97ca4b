package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// ListFeedback returns one page of the feedback table, newest first. The
// page query parameter is 1-based and defaults to 1.
func (h *Handlers) ListFeedback(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	result, err := h.feedback.List(r.Context(), page)
	if err != nil {
		writeDomainError(w, err, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetFeedback returns a single record.
func (h *Handlers) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	record, err := h.feedback.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CreateFeedback ingests a new feedback record.
func (h *Handlers) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	record, ok := readJSON[feedback.Record](w, r)
	if !ok {
		return
	}

	created, err := h.feedback.Create(r.Context(), &record)
	if err != nil {
		writeDomainError(w, err, "feedback not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteFeedback removes exactly one record.
func (h *Handlers) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	if err := h.feedback.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "feedback not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportFeedback streams the full export artifact as a file download.
func (h *Handlers) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.feedback.Export(r.Context())
	if err != nil {
		writeDomainError(w, err, "export unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
