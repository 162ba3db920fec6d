package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("screening run not found")

const runColumns = `id, created_at, market, asset_class, strategy, symbols_total, failed_count, duration_ms`

const resultColumns = `asset_code, trading_days, trades, profits, losses, stops, final_capital,
	profit, profit_percentage, max_drawdown, average_gain, average_loss, sharpe_ratio,
	sortino_ratio, recovery_factor, success_rate`

// Repository stores screening runs in results.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new results repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "results").Logger(),
	}
}

// SaveRun writes the run header, its ranked results and failures atomically.
func (r *Repository) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}

	strategy, err := msgpack.Marshal(run.Strategy)
	if err != nil {
		return fmt.Errorf("failed to encode strategy: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err = database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO screening_runs (`+runColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, createdAt.Unix(), run.Market, run.AssetClass, strategy,
			run.SymbolsTotal, run.FailedCount, run.DurationMs)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		resultStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO screening_results (run_id, rank, `+resultColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare result insert: %w", err)
		}
		defer resultStmt.Close()

		for rank, res := range run.Results {
			_, err := resultStmt.ExecContext(ctx, run.ID, rank,
				res.AssetCode, res.TradingDays, res.Trades, res.Profits, res.Losses, res.Stops,
				res.FinalCapital, res.Profit, res.ProfitPercentage, res.MaxDrawdown,
				res.AverageGain, res.AverageLoss, res.SharpeRatio,
				nullFloat(res.SortinoRatio), nullFloat(res.RecoveryFactor), res.SuccessRate)
			if err != nil {
				return fmt.Errorf("failed to insert result %s: %w", res.AssetCode, err)
			}
		}

		for _, f := range run.Failures {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO screening_failures (run_id, symbol, reason) VALUES (?, ?, ?)",
				run.ID, f.Symbol, f.Reason)
			if err != nil {
				return fmt.Errorf("failed to insert failure %s: %w", f.Symbol, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	r.log.Debug().
		Str("run_id", run.ID).
		Int("results", len(run.Results)).
		Int("failures", len(run.Failures)).
		Msg("Saved screening run")
	return nil
}

// GetRun loads a run with its results and failures.
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM screening_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	if run.Results, err = r.GetResults(ctx, id); err != nil {
		return nil, err
	}
	if run.Failures, err = r.getFailures(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns run headers, newest first. Results and failures are not loaded.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM screening_runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetResults returns a run's summary rows in rank order.
func (r *Repository) GetResults(ctx context.Context, runID string) ([]backtest.AnalysisResult, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+resultColumns+" FROM screening_results WHERE run_id = ? ORDER BY rank", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for run %s: %w", runID, err)
	}
	defer rows.Close()

	results := make([]backtest.AnalysisResult, 0)
	for rows.Next() {
		var res backtest.AnalysisResult
		var sortino, recovery sql.NullFloat64
		err := rows.Scan(&res.AssetCode, &res.TradingDays, &res.Trades, &res.Profits, &res.Losses,
			&res.Stops, &res.FinalCapital, &res.Profit, &res.ProfitPercentage, &res.MaxDrawdown,
			&res.AverageGain, &res.AverageLoss, &res.SharpeRatio, &sortino, &recovery, &res.SuccessRate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.SortinoRatio = floatPtr(sortino)
		res.RecoveryFactor = floatPtr(recovery)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}
	return results, nil
}

// DeleteRunsBefore removes runs older than cutoff and returns how many were deleted.
func (r *Repository) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		sub := "SELECT id FROM screening_runs WHERE created_at < ?"
		if _, err := tx.ExecContext(ctx, "DELETE FROM screening_results WHERE run_id IN ("+sub+")", cutoff.Unix()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM screening_failures WHERE run_id IN ("+sub+")", cutoff.Unix()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM screening_runs WHERE created_at < ?", cutoff.Unix())
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return deleted, nil
}

func (r *Repository) getFailures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT symbol, reason FROM screening_failures WHERE run_id = ? ORDER BY symbol", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures for run %s: %w", runID, err)
	}
	defer rows.Close()

	failures := make([]Failure, 0)
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Symbol, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var createdAt int64
	var market, assetClass sql.NullString
	var strategy []byte

	err := s.Scan(&run.ID, &createdAt, &market, &assetClass, &strategy,
		&run.SymbolsTotal, &run.FailedCount, &run.DurationMs)
	if err != nil {
		return nil, err
	}

	if err := msgpack.Unmarshal(strategy, &run.Strategy); err != nil {
		return nil, fmt.Errorf("failed to decode strategy for run %s: %w", run.ID, err)
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Market = market.String
	run.AssetClass = assetClass.String
	return &run, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
