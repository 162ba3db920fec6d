package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	testingpkg "github.com/igorcrp/lova-mia-sub000/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLog = zerolog.New(nil).Level(zerolog.Disabled)

type fakeRunner struct {
	run      *results.Run
	err      error
	requests []screening.Request
}

func (f *fakeRunner) Run(ctx context.Context, req screening.Request, progress screening.ProgressFunc) (*results.Run, error) {
	f.requests = append(f.requests, req)
	return f.run, f.err
}

type fakeArchiver struct {
	archived []string
	err      error
}

func (f *fakeArchiver) ArchiveRun(ctx context.Context, run *results.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, run.ID)
	return "mem://" + run.ID, nil
}

func TestScreeningJob(t *testing.T) {
	run := &results.Run{ID: "run-7", Results: []backtest.AnalysisResult{{AssetCode: "WEGE3"}}}
	preset := screening.Request{Market: "BR", AssetClass: "stocks", Strategy: testingpkg.NewStrategyFixture()}

	t.Run("runs preset and archives", func(t *testing.T) {
		runner := &fakeRunner{run: run}
		archiver := &fakeArchiver{}
		job := NewScreeningJob(runner, archiver, preset, time.Minute, quietLog)

		assert.Equal(t, "screening_preset", job.Name())
		require.NoError(t, job.Run())
		require.Len(t, runner.requests, 1)
		assert.Equal(t, "BR", runner.requests[0].Market)
		assert.Equal(t, []string{"run-7"}, archiver.archived)
	})

	t.Run("without archiver", func(t *testing.T) {
		job := NewScreeningJob(&fakeRunner{run: run}, nil, preset, 0, quietLog)
		assert.NoError(t, job.Run())
	})

	t.Run("runner failure", func(t *testing.T) {
		archiver := &fakeArchiver{}
		job := NewScreeningJob(&fakeRunner{err: errors.New("no symbols")}, archiver, preset, time.Minute, quietLog)
		assert.ErrorContains(t, job.Run(), "no symbols")
		assert.Empty(t, archiver.archived)
	})

	t.Run("archive failure", func(t *testing.T) {
		job := NewScreeningJob(&fakeRunner{run: run}, &fakeArchiver{err: errors.New("denied")}, preset, time.Minute, quietLog)
		assert.ErrorContains(t, job.Run(), "run-7 saved but report archive failed")
	})
}

func TestCheckDatabasesJob(t *testing.T) {
	history := testingpkg.NewTestDB(t, database.NameHistory)
	resultsDB := testingpkg.NewTestDB(t, database.NameResults)

	job := NewCheckDatabasesJob(quietLog, history, nil, resultsDB)
	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())

	require.NoError(t, resultsDB.Close())
	assert.ErrorContains(t, job.Run(), "results")
}

type fakePruner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakePruner) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

type fakeRotator struct {
	retention int
	calls     int
}

func (f *fakeRotator) RotateOldReports(ctx context.Context, retentionDays, keepMin int) (int, error) {
	f.calls++
	f.retention = retentionDays
	return 2, nil
}

func TestPruneRunsJob(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	pruner := &fakePruner{deleted: 3}
	rotator := &fakeRotator{}
	job := NewPruneRunsJob(pruner, rotator, 90, quietLog)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run())
	assert.Equal(t, now.AddDate(0, 0, -90), pruner.cutoff)
	assert.Equal(t, 90, rotator.retention)

	disabled := NewPruneRunsJob(&fakePruner{err: errors.New("should not run")}, nil, 0, quietLog)
	assert.NoError(t, disabled.Run())

	failing := NewPruneRunsJob(&fakePruner{err: errors.New("locked")}, rotator, 30, quietLog)
	assert.ErrorContains(t, failing.Run(), "locked")
	assert.Equal(t, 1, rotator.calls)
}
