package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	testingpkg "github.com/igorcrp/lova-mia-sub000/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir: t.TempDir(),
		Port:    8001,
		Screening: config.ScreeningConfig{
			BatchSize: 2,
		},
	}
}

func TestInitializeDatabases(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.Len(t, container.Databases(), 3)
	for _, name := range []string{"history.db", "universe.db", "results.db"} {
		assert.FileExists(t, filepath.Join(cfg.DataDir, name))
	}

	_, err = container.ResultsDB.Conn().Exec("SELECT COUNT(*) FROM screening_runs")
	assert.NoError(t, err)
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	cfg := &config.Config{DataDir: "/dev/null/not-a-directory"}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestWire(t *testing.T) {
	container, jobs, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.History)
	assert.NotNil(t, container.Securities)
	assert.NotNil(t, container.Runs)
	assert.NotNil(t, container.Screening)
	assert.NotNil(t, container.EventManager)
	assert.Nil(t, container.Reports)

	assert.Nil(t, jobs.Screening)
	assert.NotNil(t, jobs.CheckDatabases)
	assert.NotNil(t, jobs.PruneRuns)

	names := []string{}
	for _, j := range container.Scheduler.Jobs() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"check_databases", "prune_runs"}, names)
	assert.NoError(t, container.Scheduler.RunByName("check_databases"))
}

func TestWire_WithArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Archive = config.ArchiveConfig{
		Enabled:         true,
		Endpoint:        "http://127.0.0.1:9",
		Region:          "auto",
		Bucket:          "reports",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Prefix:          "screening-reports",
	}

	container, _, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.Reports)
}

func TestWire_ScheduledPresetRunsEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.Screening.Schedule = "@daily"
	cfg.Screening.RetentionDays = 30
	cfg.Screening.Preset = config.PresetConfig{
		Market:     "BR",
		AssetClass: "stocks",
		Strategy:   testingpkg.NewStrategyFixture(),
	}

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })
	require.NotNil(t, jobs.Screening)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, symbol := range []string{"PETR4", "VALE3"} {
		require.NoError(t, container.Securities.Upsert(ctx, universe.Security{
			Symbol: symbol, Market: "BR", AssetClass: "stocks", Active: true,
		}))
		require.NoError(t, container.History.SyncDailyBars(ctx, symbol,
			testingpkg.NewBarFixtures(start, 60, 20+float64(i)*15)))
	}

	require.NoError(t, container.Scheduler.RunByName("screening_preset"))

	runs, err := container.Runs.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].SymbolsTotal)
	assert.Zero(t, runs[0].FailedCount)

	run, err := container.Runs.GetRun(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, run.Results, 2)

	require.NoError(t, container.Scheduler.RunByName("prune_runs"))
	runs, err = container.Runs.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "fresh runs survive retention")
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Screening.Schedule = "not a schedule"
	cfg.Screening.Preset = config.PresetConfig{Market: "BR", Strategy: testingpkg.NewStrategyFixture()}

	container, jobs, err := Wire(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to register jobs")
	assert.Nil(t, container)
	assert.Nil(t, jobs)
}
