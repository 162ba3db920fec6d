package universe

import (
	"context"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

// SecurityStore defines the contract for security repository operations
// Used by handlers and the screening service to enable testing with mocks
type SecurityStore interface {
	GetBySymbol(ctx context.Context, symbol string) (*Security, error)
	GetSymbols(ctx context.Context, market, assetClass string) ([]string, error)
	List(ctx context.Context, market, assetClass string) ([]Security, error)
	GetMarkets(ctx context.Context) (map[string][]string, error)
	Upsert(ctx context.Context, security Security) error
}

// BarStore defines the contract for daily bar storage
type BarStore interface {
	GetDailyBars(ctx context.Context, symbol string, q BarQuery) ([]backtest.Bar, error)
	SyncDailyBars(ctx context.Context, symbol string, bars []backtest.Bar) error
	GetCoverage(ctx context.Context, symbol string) (*Coverage, error)
}

var (
	_ SecurityStore = (*SecurityRepository)(nil)
	_ BarStore      = (*HistoryDB)(nil)
)
