package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// EntryDecision is the outcome of evaluating a period's first trading day.
// Position is nil when no trade opened; Note then says why.
type EntryDecision struct {
	ReferencePrice      float64
	SuggestedEntryPrice float64
	Triggered           bool
	ActualPrice         float64
	LotSize             float64
	StopPrice           float64
	Position            *Position
	Note                Note
}

// SuggestedEntryPrice applies the entry percentage to the reference price.
func SuggestedEntryPrice(op Operation, reference, entryPct float64) float64 {
	return reference * (1 - op.direction()*entryPct/100)
}

// StopPrice applies the stop percentage to the actual entry price.
func StopPrice(op Operation, entry, stopPct float64) float64 {
	return entry * (1 - op.direction()*stopPct/100)
}

// LotSize sizes a position from the capital available before entry.
func LotSize(rounding LotRounding, capital, price float64) float64 {
	if !usable(price) || capital <= 0 {
		return 0
	}
	units := capital / price
	if rounding == LotFractional {
		return decimal.NewFromFloat(units).Round(8).InexactFloat64()
	}
	return math.Floor(units/10) * 10
}

// EvaluateEntry decides whether a position opens on day, given the previous
// trading day prev and the capital available.
func EvaluateEntry(cfg StrategyConfig, prev, day Bar, capital float64) EntryDecision {
	var d EntryDecision

	d.ReferencePrice = prev.Price(cfg.ReferencePrice)
	if !usable(d.ReferencePrice) {
		d.Note = NoteMissingReference
		return d
	}
	d.SuggestedEntryPrice = SuggestedEntryPrice(cfg.Operation, d.ReferencePrice, cfg.EntryPercentage)

	price, ok := triggerPrice(cfg.Operation, d.SuggestedEntryPrice, day)
	if !ok {
		d.Note = NoteNotTriggered
		return d
	}
	d.Triggered = true
	d.ActualPrice = price

	d.LotSize = LotSize(cfg.LotRounding, capital, price)
	if d.LotSize <= 0 {
		d.LotSize = 0
		d.Note = NoteInsufficientCapital
		return d
	}
	d.StopPrice = StopPrice(cfg.Operation, price, cfg.StopPercentage)
	d.Position = &Position{
		EntryDate:           day.Date,
		EntryPrice:          price,
		SuggestedEntryPrice: d.SuggestedEntryPrice,
		StopPrice:           d.StopPrice,
		LotSize:             d.LotSize,
		CapitalBeforeEntry:  capital,
	}
	return d
}

// triggerPrice returns the fill price if day reaches the suggested price.
// A gap through the threshold fills at the open, otherwise at the threshold.
func triggerPrice(op Operation, suggested float64, day Bar) (float64, bool) {
	switch op {
	case OperationBuy:
		if usable(day.Open) && day.Open <= suggested {
			return day.Open, true
		}
		if usable(day.Low) && day.Low <= suggested {
			return suggested, true
		}
	case OperationSell:
		if usable(day.Open) && day.Open >= suggested {
			return day.Open, true
		}
		if usable(day.High) && day.High >= suggested {
			return suggested, true
		}
	}
	return 0, false
}
