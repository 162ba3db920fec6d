package backtest

import (
	"fmt"
)

// Options are run-level settings that are not part of the strategy.
type Options struct {
	// RiskFreeRate in percent, subtracted from the total return in Sharpe and Sortino.
	RiskFreeRate float64
}

// State is the accumulator folded over the bar series.
type State struct {
	Ledger Ledger
	// Open is the position carried into the next day, nil when flat.
	Open *Position
	// Attempted is set once an entry was evaluated in the current period.
	Attempted bool
	Counters  DayCounters
}

// DayOutput is what a single Step emits for the detailed result.
type DayOutput struct {
	Row   DayRow
	Trade *TradeEvent
	Point CapitalPoint
}

// Step advances the simulation by one trading day. It does not modify its
// inputs; the returned State replaces st.
func Step(cfg StrategyConfig, st State, bars []Bar, i int, period Period) (State, DayOutput) {
	day := bars[i]
	first := i == period.Start
	last := i == period.End
	if first {
		st.Attempted = false
	}

	row := DayRow{
		Date:          day.Date,
		Open:          day.Open,
		High:          day.High,
		Low:           day.Low,
		Close:         day.Close,
		PeriodKey:     period.Key,
		FirstOfPeriod: first,
		LastOfPeriod:  last,
	}

	if st.Open == nil && first && !st.Attempted {
		st.Attempted = true
		st.Counters.EntryAttempts++
		if i == 0 {
			row.Note = NoteNoPreviousDay
		} else {
			d := EvaluateEntry(cfg, bars[i-1], day, st.Ledger.Capital)
			row.ReferencePrice = d.ReferencePrice
			row.SuggestedEntryPrice = d.SuggestedEntryPrice
			row.Triggered = d.Triggered
			row.EntryPrice = d.ActualPrice
			row.LotSize = d.LotSize
			row.StopPrice = d.StopPrice
			row.Note = d.Note
			switch d.Note {
			case NoteNotTriggered:
				st.Counters.NotTriggered++
			case NoteInsufficientCapital:
				st.Counters.InsufficientCapital++
			case NoteMissingReference:
				st.Counters.MissingReference++
			}
			st.Open = d.Position
		}
	}

	var out DayOutput
	if st.Open != nil {
		row.InPosition = true
		x := EvaluateExit(*st.Open, cfg.Operation, day, last)
		switch {
		case x.Closed:
			ledger, trade := st.Ledger.Close(*st.Open, cfg.Operation, day.Date, x.Price, x.Reason)
			st.Ledger = ledger
			st.Open = nil
			row.ExitPrice = trade.Close.ExitPrice
			row.ExitReason = trade.Close.ExitReason
			row.ProfitLoss = trade.Close.ProfitLoss
			out.Trade = &trade
		case x.Note != "":
			row.Note = x.Note
			st.Counters.MissingExitPrice++
		}
	}

	row.Capital = st.Ledger.Capital
	out.Row = row
	out.Point = st.Ledger.Mark(day.Date)
	return st, out
}

// Simulate replays bars against cfg and returns the full result for symbol.
// Bars must be strictly ascending by date. Only configuration and data errors
// are returned; per-day problems are recorded on the rows.
func Simulate(symbol string, bars []Bar, cfg StrategyConfig, opts Options) (*DetailedResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", ErrDataUnavailable, symbol)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: %s bar %d (%s) is not after %s", ErrMalformedData, symbol, i,
				bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	boundary, err := BoundaryFor(cfg.Cadence)
	if err != nil {
		return nil, err
	}

	st := State{Ledger: NewLedger(cfg.InitialCapital)}
	rows := make([]DayRow, 0, len(bars))
	points := make([]CapitalPoint, 0, len(bars))
	trades := make([]TradeEvent, 0)

	for _, p := range Segment(bars, boundary) {
		for i := p.Start; i <= p.End; i++ {
			var out DayOutput
			st, out = Step(cfg, st, bars, i, p)
			rows = append(rows, out.Row)
			points = append(points, out.Point)
			if out.Trade != nil {
				trades = append(trades, *out.Trade)
			}
		}
	}

	return &DetailedResult{
		AnalysisResult: AnalysisResult{
			AssetCode:      symbol,
			TradingDays:    len(bars),
			SummaryMetrics: ComputeMetrics(trades, points, cfg.InitialCapital, opts.RiskFreeRate),
		},
		Strategy:       cfg,
		Rows:           rows,
		TradeEvents:    trades,
		CapitalSeries:  points,
		OpenPosition:   st.Open,
		CapitalFloored: st.Ledger.Floored,
		Counters:       st.Counters,
	}, nil
}
