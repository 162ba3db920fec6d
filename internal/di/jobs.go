package di

import (
	"fmt"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	checkDatabasesSchedule = "0 3 * * *"  // 03:00 daily
	pruneRunsSchedule      = "30 3 * * *" // 03:30 daily
)

// RegisterJobs creates the scheduler jobs and registers them with the container's scheduler.
// Jobs without a schedule are still registered so they can be triggered over HTTP.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("scheduler not initialized")
	}
	sched := container.Scheduler
	instances := &JobInstances{}

	instances.CheckDatabases = scheduler.NewCheckDatabasesJob(log, container.Databases()...)
	if err := sched.AddJob(checkDatabasesSchedule, instances.CheckDatabases); err != nil {
		return nil, err
	}

	// Avoid a typed-nil interface when the archive is disabled
	var rotator scheduler.ReportRotator
	var archiver scheduler.ReportArchiver
	if container.Reports != nil {
		rotator = container.Reports
		archiver = container.Reports
	}

	instances.PruneRuns = scheduler.NewPruneRunsJob(container.Runs, rotator, cfg.Screening.RetentionDays, log)
	if cfg.Screening.RetentionDays > 0 {
		if err := sched.AddJob(pruneRunsSchedule, instances.PruneRuns); err != nil {
			return nil, err
		}
	} else {
		sched.Register(instances.PruneRuns)
	}

	if cfg.Screening.Schedule != "" {
		preset := cfg.Screening.Preset
		instances.Screening = scheduler.NewScreeningJob(
			container.Screening,
			archiver,
			screening.Request{
				Market:     preset.Market,
				AssetClass: preset.AssetClass,
				Symbols:    preset.Symbols,
				Strategy:   preset.Strategy,
				Query:      universe.BarQuery{Limit: cfg.Screening.HistoryLimit},
				BatchSize:  cfg.Screening.BatchSize,
			},
			30*time.Minute,
			log,
		)
		if err := sched.AddJob(cfg.Screening.Schedule, instances.Screening); err != nil {
			return nil, err
		}
	}

	log.Info().Int("jobs", len(sched.Jobs())).Msg("Jobs registered")
	return instances, nil
}
