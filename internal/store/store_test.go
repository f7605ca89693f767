// store_test.go provides a shared test database helper for all store
// integration tests. Each test gets its own migrated SQLite file.
package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/starwishes/Nav/internal/database"
	"github.com/starwishes/Nav/internal/models"
)

// testDB opens a fresh SQLite database in a temporary directory and runs
// migrations. A cleanup function is registered to close the connection
// when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "nav.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

// seedTree stores a small tree: categories 1 and 2, items 1..3.
func seedTree(t *testing.T, s *BookmarkStore) {
	t.Helper()
	cats := []models.Category{
		{ID: 1, Name: "Dev", Level: 0},
		{ID: 2, Name: "Private", Level: 2},
	}
	items := []models.Item{
		{ID: 1, Name: "Go", URL: "https://go.dev", CategoryID: ptr(int64(1)), Tags: []string{"lang"}},
		{ID: 2, Name: "Docs", URL: "https://pkg.go.dev", Description: "Package docs", CategoryID: ptr(int64(1))},
		{ID: 3, Name: "Secret", URL: "https://secret.example", CategoryID: ptr(int64(2)), Level: 2},
	}
	if err := s.ReplaceAll(context.Background(), cats, items); err != nil {
		t.Fatalf("seed ReplaceAll: %v", err)
	}
}
