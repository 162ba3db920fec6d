package universe

import (
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/rs/zerolog"
)

const (
	maxPriceChangePercent = 1000.0 // >1000% change is a spike
	minPriceChangePercent = -90.0  // <-90% change is a crash
)

// BarIssue flags a bar that looks wrong. Bars are never rewritten; the engine
// degrades to "no trade" on unusable prices.
type BarIssue struct {
	Index  int    `json:"index"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// PriceValidator checks imported bars for ordering and OHLC consistency
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// ValidateBar checks one bar against the previous close (0 when unknown).
// Returns an empty reason for a valid bar.
func (v *PriceValidator) ValidateBar(bar backtest.Bar, prevClose float64) string {
	if bar.Open <= 0 && bar.High <= 0 && bar.Low <= 0 && bar.Close <= 0 {
		return "no_prices"
	}
	if bar.High > 0 && bar.Low > 0 && bar.High < bar.Low {
		return "high_below_low"
	}
	if bar.High > 0 && bar.Open > bar.High {
		return "high_below_open"
	}
	if bar.High > 0 && bar.Close > bar.High {
		return "high_below_close"
	}
	if bar.Low > 0 && bar.Open > 0 && bar.Low > bar.Open {
		return "low_above_open"
	}
	if bar.Low > 0 && bar.Close > 0 && bar.Low > bar.Close {
		return "low_above_close"
	}

	if prevClose > 0 && bar.Close > 0 {
		changePercent := ((bar.Close - prevClose) / prevClose) * 100.0
		if changePercent > maxPriceChangePercent {
			return "spike_detected"
		}
		if changePercent < minPriceChangePercent {
			return "crash_detected"
		}
	}
	return ""
}

// ValidateBars returns every issue in an ascending series, including dates
// that are out of order or duplicated.
func (v *PriceValidator) ValidateBars(symbol string, bars []backtest.Bar) []BarIssue {
	var issues []BarIssue
	prevClose := 0.0
	for i, b := range bars {
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			issues = append(issues, BarIssue{Index: i, Date: b.Date.Format("2006-01-02"), Reason: "out_of_order"})
			continue
		}
		if reason := v.ValidateBar(b, prevClose); reason != "" {
			issues = append(issues, BarIssue{Index: i, Date: b.Date.Format("2006-01-02"), Reason: reason})
		}
		if b.Close > 0 {
			prevClose = b.Close
		}
	}

	if len(issues) > 0 {
		v.log.Warn().
			Str("symbol", symbol).
			Int("issues", len(issues)).
			Int("bars", len(bars)).
			Msg("Bar series has suspicious prices")
	}
	return issues
}
