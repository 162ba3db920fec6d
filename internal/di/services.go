// Package di provides dependency injection for business services.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/reports"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	"github.com/igorcrp/lova-mia-sub000/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates the event bus, services and the scheduler
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Screening = screening.NewService(
		container.History,
		container.Securities,
		container.EventManager,
		container.Runs,
		screening.Config{
			BatchSize:    cfg.Screening.BatchSize,
			RiskFreeRate: cfg.Screening.RiskFreeRate,
		},
		log,
	)

	if cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := reports.NewS3Store(ctx, reports.S3Config{
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			Bucket:          cfg.Archive.Bucket,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create report archive: %w", err)
		}
		container.Reports = reports.NewService(store, cfg.Archive.Prefix, container.EventManager, log)
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Report archive enabled")
	}

	container.Scheduler = scheduler.New(container.EventManager, log)

	log.Info().Msg("Services initialized")
	return nil
}
