package http

import (
	"net/http"

	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// OpenAnalysis creates a visible analysis session over a fresh snapshot.
func (h *Handlers) OpenAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := h.analysis.Open(r.Context())
	if err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// GetAnalysis returns the current view of a session.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := h.analysis.Get(urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ShowAnalysis makes a session visible, loading its snapshot on first show.
func (h *Handlers) ShowAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := h.analysis.Show(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HideAnalysis hides a session without discarding its snapshot.
func (h *Handlers) HideAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.analysis.Hide(urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type filterRequest struct {
	Mode  string `json:"mode"`
	Query string `json:"query"`
}

// FilterAnalysis replaces the session's filter state and returns the view
// recomputed from the original snapshot.
func (h *Handlers) FilterAnalysis(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[filterRequest](w, r)
	if !ok {
		return
	}

	view, err := h.analysis.SetFilter(urlParam(r, "id"), feedback.Mode(req.Mode), req.Query)
	if err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RefreshAnalysis re-fetches the snapshot, keeping the active filter.
func (h *Handlers) RefreshAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := h.analysis.Refresh(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AnalysisRecord returns one snapshot record with its formatted transcript.
func (h *Handlers) AnalysisRecord(w http.ResponseWriter, r *http.Request) {
	detail, err := h.analysis.Record(urlParam(r, "id"), urlParam(r, "recordID"))
	if err != nil {
		writeDomainError(w, err, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CloseAnalysis discards a session entirely.
func (h *Handlers) CloseAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.analysis.Close(urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "analysis session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
