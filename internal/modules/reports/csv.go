// Package reports renders screening runs as CSV and archives them to
// S3-compatible object storage.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

var csvHeader = []string{
	"rank", "asset_code", "trading_days", "trades", "profits", "losses", "stops",
	"success_rate", "final_capital", "profit", "profit_percentage", "max_drawdown",
	"average_gain", "average_loss", "sharpe_ratio", "sortino_ratio", "recovery_factor",
}

// WriteCSV writes a header and one line per result, ranked from 1.
// Ratios that do not apply are written as empty cells.
func WriteCSV(w io.Writer, results []backtest.AnalysisResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, r := range results {
		record := []string{
			strconv.Itoa(i + 1),
			r.AssetCode,
			strconv.Itoa(r.TradingDays),
			strconv.Itoa(r.Trades),
			strconv.Itoa(r.Profits),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Stops),
			money(r.SuccessRate),
			money(r.FinalCapital),
			money(r.Profit),
			money(r.ProfitPercentage),
			money(r.MaxDrawdown),
			money(r.AverageGain),
			money(r.AverageLoss),
			ratio(r.SharpeRatio),
			optionalRatio(r.SortinoRatio),
			optionalRatio(r.RecoveryFactor),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", r.AssetCode, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func ratio(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func optionalRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return ratio(*v)
}
