package backtest

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Operation is the trade direction.
type Operation string

const (
	OperationBuy  Operation = "buy"
	OperationSell Operation = "sell"
)

// PriceField selects which price of the previous day is the reference.
type PriceField string

const (
	PriceOpen  PriceField = "open"
	PriceHigh  PriceField = "high"
	PriceLow   PriceField = "low"
	PriceClose PriceField = "close"
)

// Cadence is the period length over which at most one entry is attempted.
type Cadence string

const (
	CadenceDay   Cadence = "day"
	CadenceWeek  Cadence = "week"
	CadenceMonth Cadence = "month"
	CadenceYear  Cadence = "year"
)

// LotRounding controls how a lot size is derived from capital and price.
type LotRounding string

const (
	// LotInteger rounds down to a multiple of 10 units.
	LotInteger LotRounding = "integer"
	// LotFractional keeps 8 decimal places (crypto-class instruments).
	LotFractional LotRounding = "fractional"
)

// ParseOperation accepts "buy"/"sell" in any case, plus "compra"/"venda".
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra", "long":
		return OperationBuy, nil
	case "sell", "venda", "short":
		return OperationSell, nil
	}
	return "", invalid("operation", "unknown value %q", s)
}

// ParsePriceField accepts the four OHLC field names.
func ParsePriceField(s string) (PriceField, error) {
	switch f := PriceField(strings.ToLower(strings.TrimSpace(s))); f {
	case PriceOpen, PriceHigh, PriceLow, PriceClose:
		return f, nil
	}
	return "", invalid("reference_price", "unknown value %q", s)
}

// ParseCadence accepts both the noun and adjective forms (week, weekly, ...).
func ParseCadence(s string) (Cadence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return CadenceDay, nil
	case "week", "weekly":
		return CadenceWeek, nil
	case "month", "monthly":
		return CadenceMonth, nil
	case "year", "yearly", "annual":
		return CadenceYear, nil
	}
	return "", invalid("cadence", "unknown value %q", s)
}

// ParseLotRounding defaults an empty value to LotInteger.
func ParseLotRounding(s string) (LotRounding, error) {
	switch l := LotRounding(strings.ToLower(strings.TrimSpace(s))); l {
	case LotInteger, LotFractional:
		return l, nil
	case "":
		return LotInteger, nil
	}
	return "", invalid("lot_rounding", "unknown value %q", s)
}

// StrategyConfig fully determines a simulation. Percentages are expressed in
// percent (1.5 means 1.5%).
type StrategyConfig struct {
	Operation       Operation   `json:"operation" msgpack:"operation"`
	ReferencePrice  PriceField  `json:"reference_price" msgpack:"reference_price"`
	EntryPercentage float64     `json:"entry_percentage" msgpack:"entry_percentage"`
	StopPercentage  float64     `json:"stop_percentage" msgpack:"stop_percentage"`
	InitialCapital  float64     `json:"initial_capital" msgpack:"initial_capital"`
	Cadence         Cadence     `json:"cadence" msgpack:"cadence"`
	LotRounding     LotRounding `json:"lot_rounding" msgpack:"lot_rounding"`
}

// Validate rejects configurations the engine cannot run. The returned error
// is a *ConfigError wrapping ErrConfigurationInvalid.
func (c StrategyConfig) Validate() error {
	if _, err := ParseOperation(string(c.Operation)); err != nil {
		return err
	}
	if _, err := ParsePriceField(string(c.ReferencePrice)); err != nil {
		return err
	}
	if _, err := ParseCadence(string(c.Cadence)); err != nil {
		return err
	}
	if _, err := ParseLotRounding(string(c.LotRounding)); err != nil {
		return err
	}
	if err := validatePercentage("entry_percentage", c.EntryPercentage); err != nil {
		return err
	}
	if err := validatePercentage("stop_percentage", c.StopPercentage); err != nil {
		return err
	}
	if math.IsNaN(c.InitialCapital) || math.IsInf(c.InitialCapital, 0) || c.InitialCapital <= 0 {
		return invalid("initial_capital", "must be a positive number, got %v", c.InitialCapital)
	}
	return nil
}

// Normalize maps UI aliases onto the canonical enum values. Unknown values
// are left untouched so Validate can report them.
func (c StrategyConfig) Normalize() StrategyConfig {
	if op, err := ParseOperation(string(c.Operation)); err == nil {
		c.Operation = op
	}
	if f, err := ParsePriceField(string(c.ReferencePrice)); err == nil {
		c.ReferencePrice = f
	}
	if cad, err := ParseCadence(string(c.Cadence)); err == nil {
		c.Cadence = cad
	}
	if l, err := ParseLotRounding(string(c.LotRounding)); err == nil {
		c.LotRounding = l
	}
	return c
}

func validatePercentage(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative, got %v", v)
	}
	if decimal.NewFromFloat(v).Exponent() < -2 {
		return invalid(field, "allows at most 2 fractional digits, got %v", v)
	}
	return nil
}

// direction returns +1 for buy and -1 for sell.
func (o Operation) direction() float64 {
	if o == OperationSell {
		return -1
	}
	return 1
}

func (o Operation) String() string { return string(o) }

func (c Cadence) String() string { return string(c) }

func (c StrategyConfig) String() string {
	return fmt.Sprintf("%s %s entry=%.2f%% stop=%.2f%% %s", c.Operation, c.ReferencePrice,
		c.EntryPercentage, c.StopPercentage, c.Cadence)
}
