// Package handlers provides HTTP handlers for screening runs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/reports"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// Runner executes screening runs
type Runner interface {
	Run(ctx context.Context, req screening.Request, progress screening.ProgressFunc) (*results.Run, error)
}

// RunReader reads persisted runs
type RunReader interface {
	GetRun(ctx context.Context, id string) (*results.Run, error)
	ListRuns(ctx context.Context, limit int) ([]results.Run, error)
}

var (
	_ Runner    = (*screening.Service)(nil)
	_ RunReader = (*results.Repository)(nil)
)

// RunRequest is the JSON body accepted by the run endpoints
type RunRequest struct {
	Market     string                  `json:"market"`
	AssetClass string                  `json:"asset_class"`
	Symbols    []string                `json:"symbols"`
	Strategy   backtest.StrategyConfig `json:"strategy"`
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Limit      int                     `json:"limit"`
	BatchSize  int                     `json:"batch_size"`
}

// ToRequest converts the body to a service request
func (b RunRequest) ToRequest() (screening.Request, error) {
	query, err := BarQuery(b.From, b.To, b.Limit)
	if err != nil {
		return screening.Request{}, err
	}
	return screening.Request{
		Market:     b.Market,
		AssetClass: b.AssetClass,
		Symbols:    b.Symbols,
		Strategy:   b.Strategy,
		Query:      query,
		BatchSize:  b.BatchSize,
	}, nil
}

// BarQuery builds a bar query from optional YYYY-MM-DD bounds and a limit
func BarQuery(from, to string, limit int) (universe.BarQuery, error) {
	var q universe.BarQuery
	var err error
	if q.From, err = utils.ParseOptionalDate(from); err != nil {
		return q, err
	}
	if q.To, err = utils.ParseOptionalDate(to); err != nil {
		return q, err
	}
	if limit > 0 {
		q.Limit = limit
	}
	return q, nil
}

// Handler handles screening HTTP requests
type Handler struct {
	runner Runner
	runs   RunReader
	log    zerolog.Logger
}

// NewHandler creates a new screening handler
func NewHandler(runner Runner, runs RunReader, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		runs:   runs,
		log:    log.With().Str("handler", "screening").Logger(),
	}
}

// HandleCreateRun handles POST /api/screening/runs
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.runner.Run(r.Context(), req, nil)
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Screening run failed")
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     run,
		"metadata": metadata(),
	})
}

// HandleListRuns handles GET /api/screening/runs?limit=
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list screening runs")
		http.Error(w, "Failed to list screening runs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"runs":  runs,
			"count": len(runs),
		},
		"metadata": metadata(),
	})
}

// HandleGetRun handles GET /api/screening/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request, id string) {
	run, ok := h.loadRun(w, r, id)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     run,
		"metadata": metadata(),
	})
}

// HandleGetRunReport handles GET /api/screening/runs/{id}/report.csv
func (h *Handler) HandleGetRunReport(w http.ResponseWriter, r *http.Request, id string) {
	run, ok := h.loadRun(w, r, id)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"screening-"+run.ID+".csv\"")
	if err := reports.WriteCSV(w, run.Results); err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to write report")
	}
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request, id string) (*results.Run, bool) {
	run, err := h.runs.GetRun(r.Context(), id)
	if errors.Is(err, results.ErrRunNotFound) {
		http.Error(w, "Screening run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get screening run")
		http.Error(w, "Failed to get screening run", http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, backtest.ErrConfigurationInvalid), errors.Is(err, screening.ErrNoSymbols):
		return http.StatusBadRequest
	case errors.Is(err, backtest.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, backtest.ErrMalformedData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
