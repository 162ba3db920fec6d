package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RunPruner deletes old screening runs
type RunPruner interface {
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportRotator deletes old archived reports
type ReportRotator interface {
	RotateOldReports(ctx context.Context, retentionDays, keepMin int) (int, error)
}

// PruneRunsJob applies the retention policy to stored runs and archived reports
type PruneRunsJob struct {
	runs          RunPruner
	reports       ReportRotator
	retentionDays int
	log           zerolog.Logger
	now           func() time.Time
}

// NewPruneRunsJob creates a new PruneRunsJob. reports may be nil.
func NewPruneRunsJob(runs RunPruner, reports ReportRotator, retentionDays int, log zerolog.Logger) *PruneRunsJob {
	return &PruneRunsJob{
		runs:          runs,
		reports:       reports,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "prune_runs").Logger(),
		now:           time.Now,
	}
}

// Name returns the job name
func (j *PruneRunsJob) Name() string {
	return "prune_runs"
}

// Run deletes runs and reports older than the retention period
func (j *PruneRunsJob) Run() error {
	if j.retentionDays <= 0 {
		j.log.Debug().Msg("Retention disabled, nothing to prune")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := j.now().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.runs.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	rotated := 0
	if j.reports != nil {
		if rotated, err = j.reports.RotateOldReports(ctx, j.retentionDays, 1); err != nil {
			return fmt.Errorf("failed to rotate reports: %w", err)
		}
	}

	j.log.Info().
		Int64("runs_deleted", deleted).
		Int("reports_deleted", rotated).
		Time("cutoff", cutoff).
		Msg("Pruned old screening data")
	return nil
}
