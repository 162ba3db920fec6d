// Package results persists screening runs and their ranked summary rows.
package results

import (
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

// Failure records a symbol excluded from a run and why.
type Failure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Run is one screening execution. Results are ranked best first; a stored
// row's rank is its index in Results.
type Run struct {
	ID           string                    `json:"run_id"`
	CreatedAt    time.Time                 `json:"created_at"`
	Market       string                    `json:"market,omitempty"`
	AssetClass   string                    `json:"asset_class,omitempty"`
	Strategy     backtest.StrategyConfig   `json:"strategy"`
	SymbolsTotal int                       `json:"symbols_total"`
	FailedCount  int                       `json:"failed_count"`
	DurationMs   int64                     `json:"duration_ms"`
	Results      []backtest.AnalysisResult `json:"results"`
	Failures     []Failure                 `json:"failures"`
}

// Best returns the top-ranked result, or nil for a run with no results.
func (r *Run) Best() *backtest.AnalysisResult {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}
