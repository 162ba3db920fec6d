package backtest

import (
	"math"
	"sort"

	"github.com/igorcrp/lova-mia-sub000/pkg/formulas"
)

// ComputeMetrics derives the summary statistics from closed trades and the
// daily capital series. riskFreeRate is in percent.
func ComputeMetrics(trades []TradeEvent, points []CapitalPoint, initialCapital, riskFreeRate float64) SummaryMetrics {
	m := SummaryMetrics{Trades: len(trades), FinalCapital: initialCapital}
	if len(points) > 0 {
		m.FinalCapital = points[len(points)-1].Capital
	}

	pls := make([]float64, 0, len(trades))
	var gains, losses []float64
	for _, t := range trades {
		pl := t.Close.ProfitLoss
		pls = append(pls, pl)
		switch {
		case pl > 0:
			m.Profits++
			gains = append(gains, pl)
		case pl < 0:
			losses = append(losses, pl)
			if t.Close.ExitReason == ExitStopLoss {
				m.Stops++
			} else {
				m.Losses++
			}
		}
	}
	if len(gains) > 0 {
		m.AverageGain = formulas.Mean(gains)
	}
	if len(losses) > 0 {
		m.AverageLoss = formulas.Mean(losses)
	}
	if m.Trades > 0 {
		m.SuccessRate = float64(m.Profits) / float64(m.Trades) * 100
	}

	m.Profit = m.FinalCapital - initialCapital
	m.ProfitPercentage = formulas.RatioOrZero(m.Profit, initialCapital) * 100

	capital := make([]float64, len(points))
	for i, p := range points {
		capital[i] = p.Capital
	}
	drawdown := 0.0
	if dd := formulas.CalculateMaxDrawdown(capital); dd != nil {
		drawdown = *dd
	}
	m.MaxDrawdown = drawdown * 100

	excess := m.ProfitPercentage - riskFreeRate
	if len(pls) > 0 {
		m.SharpeRatio = formulas.RatioOrZero(excess, formulas.PopStdDev(pls))
	}
	if dd := formulas.DownsideDeviation(pls, 0); dd != nil {
		sortino := formulas.RatioOrZero(excess, *dd)
		m.SortinoRatio = &sortino
	}
	m.RecoveryFactor = recoveryFactor(m.Profit, drawdown, initialCapital)
	return m
}

// recoveryFactor is nil when there was no drawdown but the run made or lost
// money, since the ratio is unbounded.
func recoveryFactor(profit, drawdown, initialCapital float64) *float64 {
	if drawdown == 0 {
		if profit == 0 {
			zero := 0.0
			return &zero
		}
		return nil
	}
	rf := math.Abs(formulas.RatioOrZero(profit, drawdown*initialCapital))
	return &rf
}

// SortByProfit orders results by profit percentage, best first. Ties are
// broken by asset code so the order is deterministic.
func SortByProfit(results []AnalysisResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ProfitPercentage != results[j].ProfitPercentage {
			return results[i].ProfitPercentage > results[j].ProfitPercentage
		}
		return results[i].AssetCode < results[j].AssetCode
	})
}
