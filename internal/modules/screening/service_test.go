package screening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	testingpkg "github.com/igorcrp/lova-mia-sub000/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

type serviceFixture struct {
	service  *Service
	fetcher  *testingpkg.MockBarFetcher
	resolver *testingpkg.MockSymbolResolver
	emitter  *testingpkg.MockEventEmitter
	store    *testingpkg.MockRunStore
}

func newServiceFixture(batchSize int) *serviceFixture {
	f := &serviceFixture{
		fetcher:  testingpkg.NewMockBarFetcher(),
		resolver: testingpkg.NewMockSymbolResolver(),
		emitter:  testingpkg.NewMockEventEmitter(),
		store:    testingpkg.NewMockRunStore(),
	}
	f.service = NewService(f.fetcher, f.resolver, f.emitter, f.store,
		Config{BatchSize: batchSize}, zerolog.New(nil).Level(zerolog.Disabled))

	f.fetcher.SetBars("AAAA3", testingpkg.NewBarFixtures(testStart, 120, 20))
	f.fetcher.SetBars("BBBB3", testingpkg.NewBarFixtures(testStart, 120, 35))
	f.fetcher.SetBars("CCCC3", testingpkg.NewBarFixtures(testStart, 120, 50))
	f.fetcher.SetError("ERRO3", errors.New("upstream timeout"))
	f.fetcher.SetPanic("BOOM3")

	bad := testingpkg.NewBarFixtures(testStart, 5, 10)
	bad[2], bad[3] = bad[3], bad[2]
	f.fetcher.SetBars("DESC3", bad)
	return f
}

func TestService_RunCollectsFailuresAndRanks(t *testing.T) {
	f := newServiceFixture(2)

	var mu sync.Mutex
	var progress []float64
	run, err := f.service.Run(context.Background(), Request{
		Market:   "br",
		Symbols:  []string{"AAAA3", "ERRO3", "BBBB3", "MISS3", "BOOM3", "CCCC3", "DESC3", "aaaa3"},
		Strategy: testingpkg.NewStrategyFixture(),
	}, func(p float64) {
		mu.Lock()
		progress = append(progress, p)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "BR", run.Market)
	assert.Equal(t, 7, run.SymbolsTotal)
	assert.Equal(t, 4, run.FailedCount)
	require.Len(t, run.Results, 3)

	for i := 1; i < len(run.Results); i++ {
		assert.GreaterOrEqual(t, run.Results[i-1].ProfitPercentage, run.Results[i].ProfitPercentage)
	}

	failed := make([]string, 0, len(run.Failures))
	for _, fl := range run.Failures {
		failed = append(failed, fl.Symbol)
		assert.NotEmpty(t, fl.Reason)
	}
	assert.Equal(t, []string{"ERRO3", "MISS3", "BOOM3", "DESC3"}, failed)
	assert.Contains(t, run.Failures[1].Reason, backtest.ErrDataUnavailable.Error())

	// 7 symbols in batches of 2: initial 0 plus one report per batch.
	require.Len(t, progress, 5)
	assert.Equal(t, 0.0, progress[0])
	assert.Equal(t, 100.0, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}

	assert.Same(t, run, f.store.GetRun(run.ID))
	assert.Len(t, f.emitter.Events(events.ScreeningStarted), 1)
	assert.Len(t, f.emitter.Events(events.SymbolFailed), 4)
	completed := f.emitter.Events(events.ScreeningCompleted)
	require.Len(t, completed, 1)
	data := completed[0].(*events.ScreeningCompletedData)
	assert.Equal(t, 3, data.Results)
	assert.Equal(t, run.Results[0].AssetCode, data.BestSymbol)
}

func TestService_RunMatchesSingleSymbolSimulation(t *testing.T) {
	f := newServiceFixture(10)
	strategy := testingpkg.NewStrategyFixture()

	run, err := f.service.Run(context.Background(), Request{
		Symbols:  []string{"AAAA3", "BBBB3", "CCCC3"},
		Strategy: strategy,
	}, nil)
	require.NoError(t, err)

	for _, res := range run.Results {
		detail, err := f.service.Detail(context.Background(), DetailRequest{Symbol: res.AssetCode, Strategy: strategy})
		require.NoError(t, err)
		assert.Equal(t, detail.AnalysisResult, res)
	}

	again, err := f.service.Run(context.Background(), Request{
		Symbols:  []string{"CCCC3", "AAAA3", "BBBB3"},
		Strategy: strategy,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, run.Results, again.Results)
	assert.NotEqual(t, run.ID, again.ID)
}

func TestService_RunResolvesSymbols(t *testing.T) {
	f := newServiceFixture(10)
	f.resolver.SetSymbols("BR", "stocks", []string{"AAAA3", "BBBB3"})

	run, err := f.service.Run(context.Background(), Request{
		Market:     "BR",
		AssetClass: "stocks",
		Strategy:   testingpkg.NewStrategyFixture(),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, run.SymbolsTotal)
	assert.Len(t, run.Results, 2)

	_, err = f.service.Run(context.Background(), Request{Market: "US", Strategy: testingpkg.NewStrategyFixture()}, nil)
	assert.ErrorIs(t, err, ErrNoSymbols)

	f.resolver.SetError(errors.New("db down"))
	_, err = f.service.Run(context.Background(), Request{Market: "BR", AssetClass: "stocks", Strategy: testingpkg.NewStrategyFixture()}, nil)
	assert.ErrorContains(t, err, "db down")
}

func TestService_RunRejectsInvalidStrategy(t *testing.T) {
	f := newServiceFixture(10)
	strategy := testingpkg.NewStrategyFixture()
	strategy.EntryPercentage = 1.234

	var called bool
	_, err := f.service.Run(context.Background(), Request{
		Symbols:  []string{"AAAA3"},
		Strategy: strategy,
	}, func(float64) { called = true })

	assert.ErrorIs(t, err, backtest.ErrConfigurationInvalid)
	assert.False(t, called)
	assert.Equal(t, 0, f.store.Count())
	assert.Empty(t, f.fetcher.Queries())
}

func TestService_RunDerivesLotRoundingFromAssetClass(t *testing.T) {
	f := newServiceFixture(10)
	strategy := testingpkg.NewStrategyFixture()
	strategy.LotRounding = ""
	strategy.Operation = "compra"

	run, err := f.service.Run(context.Background(), Request{
		AssetClass: universe.AssetClassCrypto,
		Symbols:    []string{"AAAA3"},
		Strategy:   strategy,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, backtest.LotFractional, run.Strategy.LotRounding)
	assert.Equal(t, backtest.OperationBuy, run.Strategy.Operation)
}

func TestService_RunPassesQuery(t *testing.T) {
	f := newServiceFixture(10)
	from := testStart.AddDate(0, 1, 0)

	_, err := f.service.Run(context.Background(), Request{
		Symbols:  []string{"AAAA3"},
		Strategy: testingpkg.NewStrategyFixture(),
		Query:    universe.BarQuery{From: &from, Limit: 60},
	}, nil)
	require.NoError(t, err)

	queries := f.fetcher.Queries()
	require.Len(t, queries, 1)
	assert.Equal(t, 60, queries[0].Limit)
	assert.Equal(t, from, *queries[0].From)
}

func TestService_RunCancelled(t *testing.T) {
	f := newServiceFixture(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Run(ctx, Request{Symbols: []string{"AAAA3"}, Strategy: testingpkg.NewStrategyFixture()}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.store.Count())
}

func TestService_RunStoreFailure(t *testing.T) {
	f := newServiceFixture(10)
	f.store.SetError(errors.New("disk full"))

	_, err := f.service.Run(context.Background(), Request{Symbols: []string{"AAAA3"}, Strategy: testingpkg.NewStrategyFixture()}, nil)
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, f.emitter.Events(events.ScreeningCompleted))
}

func TestService_Detail(t *testing.T) {
	f := newServiceFixture(10)

	detail, err := f.service.Detail(context.Background(), DetailRequest{
		Symbol:   " aaaa3 ",
		Strategy: testingpkg.NewStrategyFixture(),
	})
	require.NoError(t, err)
	assert.Equal(t, "AAAA3", detail.AssetCode)
	assert.Len(t, detail.Rows, 120)
	assert.Len(t, detail.CapitalSeries, 120)

	_, err = f.service.Detail(context.Background(), DetailRequest{Symbol: "MISS3", Strategy: testingpkg.NewStrategyFixture()})
	assert.ErrorIs(t, err, backtest.ErrDataUnavailable)

	_, err = f.service.Detail(context.Background(), DetailRequest{Symbol: "", Strategy: testingpkg.NewStrategyFixture()})
	assert.Error(t, err)
}
