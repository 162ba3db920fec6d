// Package backtest replays a daily price series against a strategy configuration.
//
// The engine is pure: given the same bars and StrategyConfig it produces the same
// trade list, capital series and metrics. Cadence (day, week, month, year) is a
// PeriodBoundary parameter rather than a separate algorithm.
package backtest

import (
	"math"
	"time"
)

// Bar is one trading day of market data for one symbol.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Price returns the bar's value for the given price field.
func (b Bar) Price(field PriceField) float64 {
	switch field {
	case PriceOpen:
		return b.Open
	case PriceHigh:
		return b.High
	case PriceLow:
		return b.Low
	case PriceClose:
		return b.Close
	}
	return math.NaN()
}

// usable reports whether a price can be traded against. Zero, negative and
// non-finite values mark missing data.
func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Position is one open trade.
type Position struct {
	EntryDate           time.Time `json:"entry_date"`
	EntryPrice          float64   `json:"entry_price"`
	SuggestedEntryPrice float64   `json:"suggested_entry_price"`
	StopPrice           float64   `json:"stop_price"`
	LotSize             float64   `json:"lot_size"`
	CapitalBeforeEntry  float64   `json:"capital_before_entry"`
}

// ExitReason explains why a position closed.
type ExitReason string

const (
	ExitStopLoss  ExitReason = "stop_loss"
	ExitPeriodEnd ExitReason = "period_end"
)

// TradeClose is the closing half of a round trip.
type TradeClose struct {
	Date         time.Time  `json:"date"`
	ExitPrice    float64    `json:"exit_price"`
	ExitReason   ExitReason `json:"exit_reason"`
	ProfitLoss   float64    `json:"profit_loss"`
	CapitalAfter float64    `json:"capital_after"`
}

// TradeEvent is a closed round trip. It is never mutated after creation.
type TradeEvent struct {
	Open  Position   `json:"open"`
	Close TradeClose `json:"close"`
}

// CapitalPoint is the capital known at the end of one trading day.
type CapitalPoint struct {
	Date    time.Time `json:"date"`
	Capital float64   `json:"capital"`
}

// Note annotates a day on which something did not happen as planned.
type Note string

const (
	NoteNoPreviousDay       Note = "no_previous_day"
	NoteMissingReference    Note = "missing_reference_price"
	NoteNotTriggered        Note = "entry_not_triggered"
	NoteInsufficientCapital Note = "insufficient_capital"
	NoteMissingExitPrice    Note = "missing_exit_price"
)

// DayRow is one line of the per-day trade/ledger table used for drill-down.
type DayRow struct {
	Date                time.Time  `json:"date"`
	Open                float64    `json:"open"`
	High                float64    `json:"high"`
	Low                 float64    `json:"low"`
	Close               float64    `json:"close"`
	PeriodKey           string     `json:"period"`
	FirstOfPeriod       bool       `json:"first_of_period"`
	LastOfPeriod        bool       `json:"last_of_period"`
	ReferencePrice      float64    `json:"reference_price,omitempty"`
	SuggestedEntryPrice float64    `json:"suggested_entry_price,omitempty"`
	Triggered           bool       `json:"triggered"`
	EntryPrice          float64    `json:"entry_price,omitempty"`
	LotSize             float64    `json:"lot_size,omitempty"`
	StopPrice           float64    `json:"stop_price,omitempty"`
	InPosition          bool       `json:"in_position"`
	ExitPrice           float64    `json:"exit_price,omitempty"`
	ExitReason          ExitReason `json:"exit_reason,omitempty"`
	ProfitLoss          float64    `json:"profit_loss,omitempty"`
	Capital             float64    `json:"capital"`
	Note                Note       `json:"note,omitempty"`
}

// SummaryMetrics are derived from the trade list and capital series.
// SortinoRatio and RecoveryFactor are nil when the ratio is not applicable.
type SummaryMetrics struct {
	Trades           int      `json:"trades"`
	Profits          int      `json:"profits"`
	Losses           int      `json:"losses"`
	Stops            int      `json:"stops"`
	FinalCapital     float64  `json:"final_capital"`
	Profit           float64  `json:"profit"`
	ProfitPercentage float64  `json:"profit_percentage"`
	MaxDrawdown      float64  `json:"max_drawdown"` // percent of peak
	AverageGain      float64  `json:"average_gain"`
	AverageLoss      float64  `json:"average_loss"`
	SharpeRatio      float64  `json:"sharpe_ratio"`
	SortinoRatio     *float64 `json:"sortino_ratio"`
	RecoveryFactor   *float64 `json:"recovery_factor"`
	SuccessRate      float64  `json:"success_rate"`
}

// AnalysisResult is the per-symbol summary row returned by screening.
type AnalysisResult struct {
	AssetCode   string `json:"asset_code"`
	TradingDays int    `json:"trading_days"`
	SummaryMetrics
}

// DetailedResult adds the full ledger table and capital series to an AnalysisResult.
type DetailedResult struct {
	AnalysisResult
	Strategy       StrategyConfig `json:"strategy"`
	Rows           []DayRow       `json:"rows"`
	TradeEvents    []TradeEvent   `json:"trade_events"`
	CapitalSeries  []CapitalPoint `json:"capital_series"`
	OpenPosition   *Position      `json:"open_position,omitempty"`
	CapitalFloored bool           `json:"capital_floored"`
	Counters       DayCounters    `json:"counters"`
}

// DayCounters tallies the non-fatal conditions met during a run.
type DayCounters struct {
	EntryAttempts       int `json:"entry_attempts"`
	NotTriggered        int `json:"not_triggered"`
	InsufficientCapital int `json:"insufficient_capital"`
	MissingReference    int `json:"missing_reference"`
	MissingExitPrice    int `json:"missing_exit_price"`
}
