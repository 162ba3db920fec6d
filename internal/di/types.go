/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"errors"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/reports"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/screening"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: history (daily bars), universe (securities), results (screening runs)
 * - Repositories: bar history, security universe, screening runs
 * - Services: screening orchestrator, report archive (optional)
 * - Scheduler: preset screening, retention and integrity jobs
 */
type Container struct {
	// Databases (3-database architecture)
	HistoryDB  *database.DB // Daily OHLC bars, re-importable
	UniverseDB *database.DB // Securities by market and asset class
	ResultsDB  *database.DB // Screening runs, ledger profile

	// Repositories
	History    *universe.HistoryDB
	Securities *universe.SecurityRepository
	Runs       *results.Repository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Services
	Screening *screening.Service
	Reports   *reports.Service // nil when the archive is disabled

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases in a stable order
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.HistoryDB, c.UniverseDB, c.ResultsDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes all databases
func (c *Container) Close() error {
	var errs []error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JobInstances holds the registered scheduler jobs
type JobInstances struct {
	Screening      *scheduler.ScreeningJob // nil when no schedule is configured
	PruneRuns      *scheduler.PruneRunsJob
	CheckDatabases *scheduler.CheckDatabasesJob
}
