package testing

import (
	"math"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

// NewStrategyFixture returns a weekly buy strategy with 1% entry and 2% stop.
func NewStrategyFixture() backtest.StrategyConfig {
	return backtest.StrategyConfig{
		Operation:       backtest.OperationBuy,
		ReferencePrice:  backtest.PriceClose,
		EntryPercentage: 1,
		StopPercentage:  2,
		InitialCapital:  10000,
		Cadence:         backtest.CadenceWeek,
		LotRounding:     backtest.LotInteger,
	}
}

// NewBarFixtures builds n weekday bars starting at start. Prices oscillate around
// base with amplitude proportional to base so different bases give different results.
func NewBarFixtures(start time.Time, n int, base float64) []backtest.Bar {
	bars := make([]backtest.Bar, 0, n)
	d := start.UTC()
	for len(bars) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			k := float64(len(bars))
			mid := base * (1 + 0.05*math.Sin(k/3))
			bars = append(bars, backtest.Bar{
				Date:   d,
				Open:   mid * 0.995,
				High:   mid * 1.015,
				Low:    mid * 0.975,
				Close:  mid * (1 + 0.01*math.Cos(k)),
				Volume: int64(1000 + 10*len(bars)),
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return bars
}
