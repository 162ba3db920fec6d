package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	"github.com/rs/zerolog"
)

// ScreeningRunner executes and persists screening runs
type ScreeningRunner interface {
	Run(ctx context.Context, req screening.Request, progress screening.ProgressFunc) (*results.Run, error)
}

// ReportArchiver uploads a finished run's report
type ReportArchiver interface {
	ArchiveRun(ctx context.Context, run *results.Run) (string, error)
}

// ScreeningJob runs a preset screening and archives its report
type ScreeningJob struct {
	runner   ScreeningRunner
	archiver ReportArchiver
	request  screening.Request
	timeout  time.Duration
	log      zerolog.Logger
}

// NewScreeningJob creates the preset screening job. archiver may be nil.
func NewScreeningJob(
	runner ScreeningRunner,
	archiver ReportArchiver,
	request screening.Request,
	timeout time.Duration,
	log zerolog.Logger,
) *ScreeningJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &ScreeningJob{
		runner:   runner,
		archiver: archiver,
		request:  request,
		timeout:  timeout,
		log:      log.With().Str("job", "screening_preset").Logger(),
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "screening_preset"
}

// Run executes the preset screening
func (j *ScreeningJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	run, err := j.runner.Run(ctx, j.request, nil)
	if err != nil {
		return fmt.Errorf("failed to run preset screening: %w", err)
	}

	event := j.log.Info().
		Str("run_id", run.ID).
		Int("results", len(run.Results)).
		Int("failed", run.FailedCount)
	if best := run.Best(); best != nil {
		event = event.Str("best", best.AssetCode).Float64("best_profit_percentage", best.ProfitPercentage)
	}
	event.Msg("Preset screening finished")

	if j.archiver == nil {
		return nil
	}
	location, err := j.archiver.ArchiveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("run %s saved but report archive failed: %w", run.ID, err)
	}
	j.log.Debug().Str("location", location).Msg("Preset screening report archived")
	return nil
}
