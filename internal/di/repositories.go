// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/results"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.History = universe.NewHistoryDB(container.HistoryDB.Conn(), log)
	container.Securities = universe.NewSecurityRepository(container.UniverseDB.Conn(), log)
	container.Runs = results.NewRepository(container.ResultsDB.Conn(), log)

	log.Info().Msg("Repositories initialized")
	return nil
}
