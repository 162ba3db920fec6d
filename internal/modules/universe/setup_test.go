package universe

import (
	"database/sql"
	"testing"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testLog = zerolog.New(nil).Level(zerolog.Disabled)

// setupTestDB creates an in-memory database with the named schema applied
func setupTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own empty :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := database.Schema(name)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}
