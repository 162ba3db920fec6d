package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all screening routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/screening/runs", func(r chi.Router) {
		r.Post("/", h.HandleCreateRun)
		r.Get("/", h.HandleListRuns)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRun(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/{id}/report.csv", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRunReport(w, r, chi.URLParam(r, "id"))
		})
	})
}

// RegisterStreamRoutes registers the long-lived WebSocket route. It must be
// mounted outside request timeouts.
func (h *Handler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/screening/stream", h.HandleStream)
}
