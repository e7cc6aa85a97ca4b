package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountRoutes registers all API routes on the given chi router. Auth and
// rate limiting are applied by the caller so the share socket can sit
// outside bearer auth. The request timeout covers only the API group; the
// share socket manages its own deadline.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		// Feedback table
		r.Get("/feedback", h.ListFeedback)
		r.Post("/feedback", h.CreateFeedback)
		r.Get("/feedback/export", h.ExportFeedback)
		r.Get("/feedback/{id}", h.GetFeedback)
		r.Delete("/feedback/{id}", h.DeleteFeedback)

		// Analysis sessions
		r.Post("/analysis", h.OpenAnalysis)
		r.Get("/analysis/{id}", h.GetAnalysis)
		r.Post("/analysis/{id}/show", h.ShowAnalysis)
		r.Post("/analysis/{id}/hide", h.HideAnalysis)
		r.Put("/analysis/{id}/filter", h.FilterAnalysis)
		r.Post("/analysis/{id}/refresh", h.RefreshAnalysis)
		r.Get("/analysis/{id}/records/{recordID}", h.AnalysisRecord)
		r.Delete("/analysis/{id}", h.CloseAnalysis)

		// Share sessions
		r.Post("/share", h.PrepareShare)
	})

	// Delivery socket for the community window; origin-checked in the
	// WebSocket adapter rather than bearer auth.
	r.Get("/share/{id}/ws", h.ShareSocket)
}
