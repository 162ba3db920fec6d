package backtest

import "time"

// Ledger is the running capital account threaded through the simulation fold.
// It is a value: every operation returns a new Ledger.
type Ledger struct {
	Initial  float64
	Capital  float64
	Realized float64
	Floored  bool
}

// NewLedger opens an account holding initial.
func NewLedger(initial float64) Ledger {
	return Ledger{Initial: initial, Capital: initial}
}

// ProfitLoss is the signed result of a round trip.
func ProfitLoss(op Operation, entry, exit, lots float64) float64 {
	return op.direction() * (exit - entry) * lots
}

// Close realizes a position at price. Capital is floored at zero; the trade
// keeps its true profit/loss.
func (l Ledger) Close(pos Position, op Operation, date time.Time, price float64, reason ExitReason) (Ledger, TradeEvent) {
	pl := ProfitLoss(op, pos.EntryPrice, price, pos.LotSize)
	after := pos.CapitalBeforeEntry + pl
	if after < 0 {
		after = 0
		l.Floored = true
	}
	l.Capital = after
	l.Realized += pl

	return l, TradeEvent{
		Open: pos,
		Close: TradeClose{
			Date:         date,
			ExitPrice:    price,
			ExitReason:   reason,
			ProfitLoss:   pl,
			CapitalAfter: after,
		},
	}
}

// Mark snapshots the capital at the end of a day.
func (l Ledger) Mark(date time.Time) CapitalPoint {
	return CapitalPoint{Date: date, Capital: l.Capital}
}
