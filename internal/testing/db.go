// Package testing provides testing utilities and helpers shared by package tests.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/igorcrp/lova-mia-sub000/internal/database"
)

// NewTestDB creates a file-backed SQLite database in t.TempDir() and applies the
// embedded schema for name ("history", "universe" or "results"). Unknown names
// give an empty database. The database is closed when the test finishes.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == database.NameResults {
		profile = database.ProfileLedger
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db
}
