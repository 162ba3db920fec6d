package screening

import (
	"context"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
)

// BarFetcher loads ascending daily bars for one symbol.
type BarFetcher interface {
	GetDailyBars(ctx context.Context, symbol string, q universe.BarQuery) ([]backtest.Bar, error)
}

// SymbolResolver lists the symbols of a market / asset class selection.
type SymbolResolver interface {
	GetSymbols(ctx context.Context, market, assetClass string) ([]string, error)
}

// EventEmitter publishes screening lifecycle events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *results.Run) error
}

var (
	_ BarFetcher     = (*universe.HistoryDB)(nil)
	_ SymbolResolver = (*universe.SecurityRepository)(nil)
	_ EventEmitter   = (*events.Manager)(nil)
	_ RunStore       = (*results.Repository)(nil)
)
