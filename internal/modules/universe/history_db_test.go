package universe

import (
	"context"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seedBars(t *testing.T, h *HistoryDB, symbol string, dates ...string) {
	t.Helper()
	bars := make([]backtest.Bar, len(dates))
	for i, d := range dates {
		p := 10 + float64(i)
		bars[i] = backtest.Bar{Date: date(d), Open: p, High: p + 1, Low: p - 1, Close: p + 0.5, Volume: int64(100 * (i + 1))}
	}
	require.NoError(t, h.SyncDailyBars(context.Background(), symbol, bars))
}

func TestHistoryDB_GetDailyBars(t *testing.T) {
	h := NewHistoryDB(setupTestDB(t, "history"), testLog)
	ctx := context.Background()
	// Inserted out of order on purpose.
	seedBars(t, h, "petr4", "2024-01-04", "2024-01-02", "2024-01-03", "2024-01-05", "2024-01-08")

	t.Run("full history ascending", func(t *testing.T) {
		bars, err := h.GetDailyBars(ctx, "PETR4", BarQuery{})
		require.NoError(t, err)
		require.Len(t, bars, 5)
		assert.Equal(t, date("2024-01-02"), bars[0].Date)
		assert.Equal(t, date("2024-01-08"), bars[4].Date)
		for i := 1; i < len(bars); i++ {
			assert.True(t, bars[i].Date.After(bars[i-1].Date))
		}
	})

	t.Run("range", func(t *testing.T) {
		from, to := date("2024-01-03"), date("2024-01-05")
		bars, err := h.GetDailyBars(ctx, "PETR4", BarQuery{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, bars, 3)
		assert.Equal(t, from, bars[0].Date)
		assert.Equal(t, to, bars[2].Date)
	})

	t.Run("limit keeps latest bars ascending", func(t *testing.T) {
		bars, err := h.GetDailyBars(ctx, "PETR4", BarQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, date("2024-01-05"), bars[0].Date)
		assert.Equal(t, date("2024-01-08"), bars[1].Date)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := h.GetDailyBars(ctx, "VALE3", BarQuery{})
		assert.ErrorIs(t, err, backtest.ErrDataUnavailable)
	})
}

func TestHistoryDB_SyncReplacesAndKeepsMissingPrices(t *testing.T) {
	h := NewHistoryDB(setupTestDB(t, "history"), testLog)
	ctx := context.Background()
	seedBars(t, h, "ITUB4", "2024-02-01", "2024-02-02")

	require.NoError(t, h.SyncDailyBars(ctx, "ITUB4", []backtest.Bar{
		{Date: date("2024-02-02"), Open: 30, High: 31, Low: 29, Close: 0},
	}))

	bars, err := h.GetDailyBars(ctx, "ITUB4", BarQuery{})
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 30.0, bars[1].Open)
	assert.Zero(t, bars[1].Close, "missing close is stored as NULL and read back as zero")

	cov, err := h.GetCoverage(ctx, "itub4")
	require.NoError(t, err)
	require.NotNil(t, cov)
	assert.Equal(t, 2, cov.Bars)
	assert.Equal(t, date("2024-02-01"), cov.First)
	assert.Equal(t, date("2024-02-02"), cov.Last)

	cov, err = h.GetCoverage(ctx, "NONE")
	require.NoError(t, err)
	assert.Nil(t, cov)

	n, err := h.DeleteBars(ctx, "ITUB4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestHistoryDB_SyncRequiresSymbol(t *testing.T) {
	h := NewHistoryDB(setupTestDB(t, "history"), testLog)
	assert.Error(t, h.SyncDailyBars(context.Background(), "  ", nil))
}
