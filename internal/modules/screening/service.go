// Package screening runs one strategy across many symbols in fixed-size
// concurrent batches and ranks the per-symbol results.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// ErrNoSymbols is returned when a request resolves to an empty symbol list.
var ErrNoSymbols = errors.New("no symbols to screen")

// Request selects the symbols and strategy for one screening run.
// An explicit Symbols list wins over Market / AssetClass resolution.
type Request struct {
	Market     string                  `json:"market,omitempty"`
	AssetClass string                  `json:"asset_class,omitempty"`
	Symbols    []string                `json:"symbols,omitempty"`
	Strategy   backtest.StrategyConfig `json:"strategy"`
	Query      universe.BarQuery       `json:"query"`
	BatchSize  int                     `json:"batch_size,omitempty"`
}

// DetailRequest asks for the full per-day simulation of one symbol.
type DetailRequest struct {
	Symbol     string                  `json:"symbol"`
	AssetClass string                  `json:"asset_class,omitempty"`
	Strategy   backtest.StrategyConfig `json:"strategy"`
	Query      universe.BarQuery       `json:"query"`
}

// Config holds service defaults.
type Config struct {
	BatchSize    int
	RiskFreeRate float64
}

// Service is the batch orchestrator.
type Service struct {
	fetcher  BarFetcher
	resolver SymbolResolver
	emitter  EventEmitter
	store    RunStore
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a screening service. emitter and store may be nil.
func NewService(
	fetcher BarFetcher,
	resolver SymbolResolver,
	emitter EventEmitter,
	store RunStore,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Service{
		fetcher:  fetcher,
		resolver: resolver,
		emitter:  emitter,
		store:    store,
		cfg:      cfg,
		log:      log.With().Str("service", "screening").Logger(),
		now:      time.Now,
	}
}

// Run screens every symbol of req. Invalid strategies and symbol resolution
// errors are fatal; per-symbol failures are collected on the returned run.
// progress may be nil. The run is persisted when the service has a store.
func (s *Service) Run(ctx context.Context, req Request, progress ProgressFunc) (*results.Run, error) {
	defer utils.OperationTimer("screening_run", s.log)()

	strategy, err := prepareStrategy(req.Strategy, req.AssetClass)
	if err != nil {
		return nil, err
	}

	symbols, err := s.resolveSymbols(ctx, req)
	if err != nil {
		return nil, err
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}

	started := s.now()
	run := &results.Run{
		ID:           uuid.New().String(),
		CreatedAt:    started.UTC(),
		Market:       strings.ToUpper(strings.TrimSpace(req.Market)),
		AssetClass:   strings.ToLower(strings.TrimSpace(req.AssetClass)),
		Strategy:     strategy,
		SymbolsTotal: len(symbols),
		Results:      make([]backtest.AnalysisResult, 0, len(symbols)),
		Failures:     make([]results.Failure, 0),
	}
	log := s.log.With().Str("run_id", run.ID).Logger()

	log.Info().
		Int("symbols", len(symbols)).
		Int("batch_size", batchSize).
		Str("strategy", strategy.String()).
		Msg("Starting screening run")
	s.emit(&events.ScreeningStartedData{
		RunID:      run.ID,
		Market:     run.Market,
		AssetClass: run.AssetClass,
		Symbols:    len(symbols),
		BatchSize:  batchSize,
	})

	tracker := NewProgressTracker(run.ID, len(symbols), progress, s.emitter)
	tracker.Report(0)

	pool := NewWorkerPool(batchSize)
	task := s.simulateTask(strategy, req.Query)

	for start := 0; start < len(symbols); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("screening run %s cancelled: %w", run.ID, err)
		}

		end := start + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		for _, out := range pool.RunBatch(ctx, batch, task) {
			if out.Err != nil {
				s.recordFailure(log, run, out)
				continue
			}
			run.Results = append(run.Results, *out.Result)
		}
		tracker.Advance(len(batch))

		log.Debug().
			Int("batch_start", start).
			Int("batch_size", len(batch)).
			Int("failed_so_far", len(run.Failures)).
			Msg("Screening batch finished")
	}

	backtest.SortByProfit(run.Results)
	run.FailedCount = len(run.Failures)
	run.DurationMs = s.now().Sub(started).Milliseconds()

	if s.store != nil {
		if err := s.store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to persist screening run: %w", err)
		}
	}

	completed := &events.ScreeningCompletedData{
		RunID:      run.ID,
		Results:    len(run.Results),
		Failed:     run.FailedCount,
		DurationMs: run.DurationMs,
	}
	if best := run.Best(); best != nil {
		completed.BestSymbol = best.AssetCode
		completed.BestProfit = best.ProfitPercentage
	}
	s.emit(completed)

	log.Info().
		Int("results", len(run.Results)).
		Int("failed", run.FailedCount).
		Int64("duration_ms", run.DurationMs).
		Msg("Screening run completed")

	return run, nil
}

// Detail runs a single symbol and returns the per-day table and capital series.
func (s *Service) Detail(ctx context.Context, req DetailRequest) (*backtest.DetailedResult, error) {
	strategy, err := prepareStrategy(req.Strategy, req.AssetClass)
	if err != nil {
		return nil, err
	}

	symbol := utils.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, &backtest.ConfigError{Field: "symbol", Message: "is required"}
	}

	bars, err := s.fetchBars(ctx, symbol, req.Query)
	if err != nil {
		return nil, err
	}

	detail, err := backtest.Simulate(symbol, bars, strategy, backtest.Options{RiskFreeRate: s.cfg.RiskFreeRate})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate %s: %w", symbol, err)
	}
	return detail, nil
}

func (s *Service) simulateTask(strategy backtest.StrategyConfig, query universe.BarQuery) Task {
	opts := backtest.Options{RiskFreeRate: s.cfg.RiskFreeRate}
	return func(ctx context.Context, symbol string) (*backtest.AnalysisResult, error) {
		bars, err := s.fetchBars(ctx, symbol, query)
		if err != nil {
			return nil, err
		}
		detail, err := backtest.Simulate(symbol, bars, strategy, opts)
		if err != nil {
			return nil, err
		}
		return &detail.AnalysisResult, nil
	}
}

func (s *Service) fetchBars(ctx context.Context, symbol string, query universe.BarQuery) ([]backtest.Bar, error) {
	bars, err := s.fetcher.GetDailyBars(ctx, symbol, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", backtest.ErrDataUnavailable, symbol)
	}
	return bars, nil
}

func (s *Service) resolveSymbols(ctx context.Context, req Request) ([]string, error) {
	var symbols []string
	if len(req.Symbols) > 0 {
		symbols = utils.UniqueSymbols(req.Symbols)
	} else {
		resolved, err := s.resolver.GetSymbols(ctx, req.Market, req.AssetClass)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve symbols: %w", err)
		}
		symbols = utils.UniqueSymbols(resolved)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w for market %q asset class %q", ErrNoSymbols, req.Market, req.AssetClass)
	}
	return symbols, nil
}

func (s *Service) recordFailure(log zerolog.Logger, run *results.Run, out Outcome) {
	reason := out.Err.Error()
	run.Failures = append(run.Failures, results.Failure{Symbol: out.Symbol, Reason: reason})

	log.Warn().
		Err(out.Err).
		Str("symbol", out.Symbol).
		Msg("Symbol excluded from screening")
	s.emit(&events.SymbolFailedData{RunID: run.ID, Symbol: out.Symbol, Reason: reason})
}

func (s *Service) emit(data events.EventData) {
	if s.emitter != nil {
		s.emitter.EmitTyped("screening", data)
	}
}

// prepareStrategy fills a missing lot rounding from the asset class, then
// validates and normalizes.
func prepareStrategy(cfg backtest.StrategyConfig, assetClass string) (backtest.StrategyConfig, error) {
	if cfg.LotRounding == "" {
		cfg.LotRounding = universe.LotRoundingFor(assetClass)
	}
	if err := cfg.Validate(); err != nil {
		return backtest.StrategyConfig{}, err
	}
	return cfg.Normalize(), nil
}
