// Package handlers provides HTTP handlers for single-symbol simulations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	screeninghandlers "github.com/igorcrp/lova-mia-sub000/internal/modules/screening/handlers"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// Simulator runs one symbol against stored history
type Simulator interface {
	Detail(ctx context.Context, req screening.DetailRequest) (*backtest.DetailedResult, error)
}

var _ Simulator = (*screening.Service)(nil)

// SimulateRequest is the body of POST /api/backtest/simulate. When Bars is
// set the simulation runs on them instead of stored history.
type SimulateRequest struct {
	Symbol     string                  `json:"symbol"`
	AssetClass string                  `json:"asset_class"`
	Strategy   backtest.StrategyConfig `json:"strategy"`
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Limit      int                     `json:"limit"`
	Bars       []BarPayload            `json:"bars,omitempty"`
}

// BarPayload is a daily bar with a YYYY-MM-DD date
type BarPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Handler handles backtest HTTP requests
type Handler struct {
	simulator    Simulator
	riskFreeRate float64
	log          zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(simulator Simulator, riskFreeRate float64, log zerolog.Logger) *Handler {
	return &Handler{
		simulator:    simulator,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("handler", "backtest").Logger(),
	}
}

// HandleSimulate handles POST /api/backtest/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		detail *backtest.DetailedResult
		err    error
	)
	if len(body.Bars) > 0 {
		detail, err = h.simulateInline(body)
	} else {
		detail, err = h.simulateStored(r.Context(), body)
	}
	if err != nil {
		status := screeninghandlers.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("symbol", body.Symbol).Msg("Simulation failed")
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": detail,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) simulateStored(ctx context.Context, body SimulateRequest) (*backtest.DetailedResult, error) {
	query, err := screeninghandlers.BarQuery(body.From, body.To, body.Limit)
	if err != nil {
		return nil, &backtest.ConfigError{Field: "from/to", Message: err.Error()}
	}
	return h.simulator.Detail(ctx, screening.DetailRequest{
		Symbol:     body.Symbol,
		AssetClass: body.AssetClass,
		Strategy:   body.Strategy,
		Query:      query,
	})
}

func (h *Handler) simulateInline(body SimulateRequest) (*backtest.DetailedResult, error) {
	bars := make([]backtest.Bar, 0, len(body.Bars))
	for _, b := range body.Bars {
		date, err := utils.ParseDate(b.Date)
		if err != nil {
			return nil, &backtest.ConfigError{Field: "bars", Message: err.Error()}
		}
		bars = append(bars, backtest.Bar{
			Date: date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}

	strategy := body.Strategy
	if strategy.LotRounding == "" {
		strategy.LotRounding = universe.LotRoundingFor(body.AssetClass)
	}
	symbol := utils.NormalizeSymbol(body.Symbol)
	if symbol == "" {
		symbol = "INLINE"
	}
	return backtest.Simulate(symbol, bars, strategy, backtest.Options{RiskFreeRate: h.riskFreeRate})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
