// Package handlers provides HTTP handlers for the screening universe.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// Handler handles universe HTTP requests
type Handler struct {
	securities universe.SecurityStore
	bars       universe.BarStore
	log        zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(
	securities universe.SecurityStore,
	bars universe.BarStore,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		securities: securities,
		bars:       bars,
		log:        log.With().Str("handler", "universe").Logger(),
	}
}

// HandleGetSymbols handles GET /api/universe/symbols?market=&asset_class=
func (h *Handler) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	assetClass := r.URL.Query().Get("asset_class")

	securities, err := h.securities.List(r.Context(), market, assetClass)
	if err != nil {
		h.log.Error().Err(err).Str("market", market).Msg("Failed to list securities")
		http.Error(w, "Failed to list securities", http.StatusInternalServerError)
		return
	}
	if securities == nil {
		securities = []universe.Security{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"market":       market,
			"asset_class":  assetClass,
			"lot_rounding": universe.LotRoundingFor(assetClass),
			"securities":   securities,
			"count":        len(securities),
		},
		"metadata": metadata(),
	})
}

// HandleGetMarkets handles GET /api/universe/markets
func (h *Handler) HandleGetMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.securities.GetMarkets(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get markets")
		http.Error(w, "Failed to get markets", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     markets,
		"metadata": metadata(),
	})
}

// HandleGetSecurity handles GET /api/universe/securities/{symbol}
func (h *Handler) HandleGetSecurity(w http.ResponseWriter, r *http.Request, symbol string) {
	sec, err := h.securities.GetBySymbol(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get security")
		http.Error(w, "Failed to get security", http.StatusInternalServerError)
		return
	}
	if sec == nil {
		http.Error(w, "Security not found", http.StatusNotFound)
		return
	}

	coverage, err := h.bars.GetCoverage(r.Context(), symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to get coverage")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"security": sec,
			"coverage": coverage,
		},
		"metadata": metadata(),
	})
}

// HandleUpsertSecurity handles PUT /api/universe/securities
func (h *Handler) HandleUpsertSecurity(w http.ResponseWriter, r *http.Request) {
	var sec universe.Security
	if err := json.NewDecoder(r.Body).Decode(&sec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if sec.Symbol == "" || sec.Market == "" || sec.AssetClass == "" {
		http.Error(w, "symbol, market and asset_class are required", http.StatusBadRequest)
		return
	}

	if err := h.securities.Upsert(r.Context(), sec); err != nil {
		h.log.Error().Err(err).Str("symbol", sec.Symbol).Msg("Failed to upsert security")
		http.Error(w, "Failed to save security", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     map[string]interface{}{"symbol": utils.NormalizeSymbol(sec.Symbol)},
		"metadata": metadata(),
	})
}

// HandleGetBars handles GET /api/universe/securities/{symbol}/bars?from=&to=&limit=
func (h *Handler) HandleGetBars(w http.ResponseWriter, r *http.Request, symbol string) {
	q, err := ParseBarQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bars, err := h.bars.GetDailyBars(r.Context(), symbol, q)
	if errors.Is(err, backtest.ErrDataUnavailable) {
		http.Error(w, "No bars for symbol", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get bars")
		http.Error(w, "Failed to get bars", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": utils.NormalizeSymbol(symbol),
			"bars":   bars,
			"count":  len(bars),
		},
		"metadata": metadata(),
	})
}

// ParseBarQuery reads from, to and limit query parameters.
func ParseBarQuery(r *http.Request) (universe.BarQuery, error) {
	var q universe.BarQuery
	var err error

	if q.From, err = utils.ParseOptionalDate(r.URL.Query().Get("from")); err != nil {
		return q, err
	}
	if q.To, err = utils.ParseOptionalDate(r.URL.Query().Get("to")); err != nil {
		return q, err
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			q.Limit = parsedLimit
		}
	}
	return q, nil
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
