package universe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// HistoryDB provides access to historical daily bars
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// GetDailyBars returns bars for symbol in ascending date order. With a Limit,
// the most recent Limit bars inside the range are returned, still ascending.
// No bars at all is reported as backtest.ErrDataUnavailable.
func (h *HistoryDB) GetDailyBars(ctx context.Context, symbol string, q BarQuery) ([]backtest.Bar, error) {
	symbol = utils.NormalizeSymbol(symbol)
	done := utils.MeasureDBQuery("get_daily_bars", h.log)

	var where []string
	args := []interface{}{symbol}
	where = append(where, "symbol = ?")
	if q.From != nil {
		where = append(where, "date >= ?")
		args = append(args, utils.DateToUnix(*q.From))
	}
	if q.To != nil {
		where = append(where, "date <= ?")
		args = append(args, utils.DateToUnix(*q.To))
	}

	query := `
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		WHERE ` + strings.Join(where, " AND ")
	if q.Limit > 0 {
		// Newest first so LIMIT keeps the most recent bars; reversed below.
		query += " ORDER BY date DESC LIMIT ?"
		args = append(args, q.Limit)
	} else {
		query += " ORDER BY date ASC"
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []backtest.Bar
	for rows.Next() {
		var dateUnix int64
		var open, high, low, closePrice sql.NullFloat64
		var volume sql.NullInt64

		if err := rows.Scan(&dateUnix, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily bar: %w", err)
		}

		// Missing prices stay zero; the engine treats them as unusable.
		bars = append(bars, backtest.Bar{
			Date:   utils.UnixToDate(dateUnix),
			Open:   open.Float64,
			High:   high.Float64,
			Low:    low.Float64,
			Close:  closePrice.Float64,
			Volume: volume.Int64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily bars: %w", err)
	}
	done(int64(len(bars)))

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", backtest.ErrDataUnavailable, symbol)
	}

	if q.Limit > 0 {
		for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
			bars[i], bars[j] = bars[j], bars[i]
		}
	}
	return bars, nil
}

// SyncDailyBars inserts or replaces bars for symbol in a single transaction.
func (h *HistoryDB) SyncDailyBars(ctx context.Context, symbol string, bars []backtest.Bar) error {
	symbol = utils.NormalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	err := database.WithTransactionContext(ctx, h.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices
			(symbol, date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, b := range bars {
			_, err := stmt.ExecContext(ctx,
				symbol,
				utils.DateToUnix(b.Date),
				nullPrice(b.Open),
				nullPrice(b.High),
				nullPrice(b.Low),
				nullPrice(b.Close),
				b.Volume,
			)
			if err != nil {
				return fmt.Errorf("failed to insert daily bar for %s: %w", b.Date.Format(utils.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sync daily bars for %s: %w", symbol, err)
	}

	h.log.Info().
		Str("symbol", symbol).
		Int("count", len(bars)).
		Msg("Synced daily bars")

	return nil
}

// GetCoverage returns how many bars exist for symbol and their date span.
// Returns nil if the symbol has no history (not an error).
func (h *HistoryDB) GetCoverage(ctx context.Context, symbol string) (*Coverage, error) {
	symbol = utils.NormalizeSymbol(symbol)

	var count int
	var first, last sql.NullInt64
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(date), MAX(date) FROM daily_prices WHERE symbol = ?", symbol,
	).Scan(&count, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to get coverage for %s: %w", symbol, err)
	}
	if count == 0 {
		return nil, nil
	}

	return &Coverage{
		Symbol: symbol,
		Bars:   count,
		First:  utils.UnixToDate(first.Int64),
		Last:   utils.UnixToDate(last.Int64),
	}, nil
}

// DeleteBars removes all history for symbol and returns how many rows went.
func (h *HistoryDB) DeleteBars(ctx context.Context, symbol string) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM daily_prices WHERE symbol = ?", utils.NormalizeSymbol(symbol))
	if err != nil {
		return 0, fmt.Errorf("failed to delete bars: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullPrice(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v > 0}
}
