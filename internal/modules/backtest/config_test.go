package backtest

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() StrategyConfig {
	return StrategyConfig{
		Operation:       OperationBuy,
		ReferencePrice:  PriceClose,
		EntryPercentage: 1,
		StopPercentage:  2,
		InitialCapital:  10000,
		Cadence:         CadenceWeek,
		LotRounding:     LotInteger,
	}
}

func TestStrategyConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StrategyConfig)
		field  string
	}{
		{name: "valid", mutate: func(c *StrategyConfig) {}},
		{name: "zero percentages", mutate: func(c *StrategyConfig) { c.EntryPercentage, c.StopPercentage = 0, 0 }},
		{name: "two fractional digits", mutate: func(c *StrategyConfig) { c.EntryPercentage = 1.25 }},
		{name: "three fractional digits", mutate: func(c *StrategyConfig) { c.EntryPercentage = 1.255 }, field: "entry_percentage"},
		{name: "negative entry", mutate: func(c *StrategyConfig) { c.EntryPercentage = -1 }, field: "entry_percentage"},
		{name: "negative stop", mutate: func(c *StrategyConfig) { c.StopPercentage = -0.5 }, field: "stop_percentage"},
		{name: "NaN stop", mutate: func(c *StrategyConfig) { c.StopPercentage = math.NaN() }, field: "stop_percentage"},
		{name: "zero capital", mutate: func(c *StrategyConfig) { c.InitialCapital = 0 }, field: "initial_capital"},
		{name: "negative capital", mutate: func(c *StrategyConfig) { c.InitialCapital = -10 }, field: "initial_capital"},
		{name: "unknown cadence", mutate: func(c *StrategyConfig) { c.Cadence = "fortnight" }, field: "cadence"},
		{name: "unknown operation", mutate: func(c *StrategyConfig) { c.Operation = "hold" }, field: "operation"},
		{name: "unknown price field", mutate: func(c *StrategyConfig) { c.ReferencePrice = "vwap" }, field: "reference_price"},
		{name: "empty lot rounding", mutate: func(c *StrategyConfig) { c.LotRounding = "" }},
		{name: "unknown lot rounding", mutate: func(c *StrategyConfig) { c.LotRounding = "half" }, field: "lot_rounding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigurationInvalid))
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParseCadence(t *testing.T) {
	for in, want := range map[string]Cadence{
		"day": CadenceDay, "Daily": CadenceDay,
		"weekly": CadenceWeek, "MONTHLY": CadenceMonth,
		"annual": CadenceYear, " year ": CadenceYear,
	} {
		got, err := ParseCadence(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCadence("hourly")
	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("Buy")
	require.NoError(t, err)
	assert.Equal(t, OperationBuy, op)

	op, err = ParseOperation("venda")
	require.NoError(t, err)
	assert.Equal(t, OperationSell, op)

	_, err = ParseOperation("")
	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestStrategyConfig_Normalize(t *testing.T) {
	cfg := StrategyConfig{
		Operation:      "Compra",
		ReferencePrice: "CLOSE",
		Cadence:        "weekly",
	}.Normalize()

	assert.Equal(t, OperationBuy, cfg.Operation)
	assert.Equal(t, PriceClose, cfg.ReferencePrice)
	assert.Equal(t, CadenceWeek, cfg.Cadence)
	assert.Equal(t, LotInteger, cfg.LotRounding)
}
