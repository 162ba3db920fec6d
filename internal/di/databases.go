// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/database"
	"github.com/rs/zerolog"
)

var databaseProfiles = []struct {
	name    string
	profile database.DatabaseProfile
}{
	{database.NameHistory, database.ProfileCache},     // Bars can be re-imported
	{database.NameUniverse, database.ProfileStandard}, // Securities
	{database.NameResults, database.ProfileLedger},    // Run history is append-only
}

// InitializeDatabases opens all databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	for _, d := range databaseProfiles {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, d.name+".db"),
			Profile: d.profile,
			Name:    d.name,
		})
		if err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to initialize %s database: %w", d.name, err)
		}

		switch d.name {
		case database.NameHistory:
			container.HistoryDB = db
		case database.NameUniverse:
			container.UniverseDB = db
		case database.NameResults:
			container.ResultsDB = db
		}

		if err := db.Migrate(); err != nil {
			_ = container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("All databases initialized and schemas applied")

	return container, nil
}
