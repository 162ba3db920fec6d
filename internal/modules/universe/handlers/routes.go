package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all universe routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/universe", func(r chi.Router) {
		r.Get("/symbols", h.HandleGetSymbols)
		r.Get("/markets", h.HandleGetMarkets)

		r.Route("/securities", func(r chi.Router) {
			r.Put("/", h.HandleUpsertSecurity)
			r.Get("/{symbol}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetSecurity(w, r, chi.URLParam(r, "symbol"))
			})
			r.Get("/{symbol}/bars", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetBars(w, r, chi.URLParam(r, "symbol"))
			})
		})
	})
}
