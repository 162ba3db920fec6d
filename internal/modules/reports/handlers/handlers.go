// Package handlers provides HTTP handlers for archived screening reports.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/reports"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/rs/zerolog"
)

// Archive lists and writes archived reports
type Archive interface {
	ArchiveRun(ctx context.Context, run *results.Run) (string, error)
	ListReports(ctx context.Context) ([]reports.ReportInfo, error)
}

// RunGetter loads a stored run
type RunGetter interface {
	GetRun(ctx context.Context, id string) (*results.Run, error)
}

var (
	_ Archive   = (*reports.Service)(nil)
	_ RunGetter = (*results.Repository)(nil)
)

// Handler handles report archive HTTP requests
type Handler struct {
	archive Archive
	runs    RunGetter
	log     zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(archive Archive, runs RunGetter, log zerolog.Logger) *Handler {
	return &Handler{
		archive: archive,
		runs:    runs,
		log:     log.With().Str("handler", "reports").Logger(),
	}
}

// RegisterRoutes registers all report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.HandleListReports)
		r.Post("/{runID}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleArchiveRun(w, r, chi.URLParam(r, "runID"))
		})
	})
}

// HandleListReports handles GET /api/reports
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.archive.ListReports(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reports")
		http.Error(w, "Failed to list reports", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"reports": list,
			"count":   len(list),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleArchiveRun handles POST /api/reports/{runID}, uploading a stored run's CSV
func (h *Handler) HandleArchiveRun(w http.ResponseWriter, r *http.Request, runID string) {
	run, err := h.runs.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, results.ErrRunNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	location, err := h.archive.ArchiveRun(r.Context(), run)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to archive report")
		http.Error(w, "Failed to archive report", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"run_id":   run.ID,
			"location": location,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
