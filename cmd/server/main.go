// Package main is the entry point for the stock screening service.
//
// The service replays fixed-percentage entry/stop strategies over daily bars,
// ranks the symbols of a market by simulated profit and keeps every run.
//
// The application follows the same layout throughout:
// - Engine is pure (internal/modules/backtest)
// - Dependency injection via DI container
// - Repository pattern for data access
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/di"
	"github.com/igorcrp/lova-mia-sub000/internal/server"
	"github.com/igorcrp/lova-mia-sub000/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires databases, repositories, services and jobs
// 4. Starts the scheduler and the HTTP server
// 5. Waits for a shutdown signal and shuts down gracefully
//
// Databases (all in DataDir):
// - history.db: daily OHLC bars
// - universe.db: securities by market and asset class
// - results.db: screening runs, results and failures
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("batch_size", cfg.Screening.BatchSize).
		Msg("Starting screening service")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	container.Scheduler.Start()
	if jobs.Screening != nil {
		log.Info().Str("schedule", cfg.Screening.Schedule).Msg("Preset screening scheduled")
	}

	srv := server.New(server.Config{
		Log:          log,
		Container:    container,
		Port:         cfg.Port,
		DevMode:      cfg.DevMode,
		DataDir:      cfg.DataDir,
		RiskFreeRate: cfg.Screening.RiskFreeRate,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Waits for running jobs so a screening run is not cut mid-save
	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
