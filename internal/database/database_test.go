// Package database tests cover connection handling and migration
// execution. SQLite tests run against a temporary file; PostgreSQL tests
// require a running instance and are skipped otherwise.
package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testPostgresDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "nav")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "nav")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable&connect_timeout=2"
}

var tables = []string{
	"categories", "items", "users", "settings", "recycle_bin",
	"audit_logs", "sessions", "daily_stats", "visit_logs",
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("/tmp/nav.db")
	if !strings.HasPrefix(dsn, "file:/tmp/nav.db?") {
		t.Errorf("dsn prefix: got %q", dsn)
	}
	for _, want := range []string{"_txlock=immediate", "foreign_keys", "busy_timeout"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestMigrateSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "nav.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	// Migrate should be idempotent: running twice shouldn't error.
	for i := 0; i < 2; i++ {
		if err := Migrate(db, DriverSQLite); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	for _, table := range tables {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1", table).Scan(&n)
		if err != nil {
			t.Errorf("check table %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("expected table %s to exist after migration", table)
		}
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("pragma foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestSeedIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nav.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	ctx := context.Background()
	opts := SeedOptions{AdminUsername: "admin", AdminPassword: "admin123"}
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var level int
	if err := db.QueryRow("SELECT level FROM users WHERE username = 'admin'").Scan(&level); err != nil {
		t.Fatalf("select admin: %v", err)
	}
	if level != 3 {
		t.Errorf("admin level: got %d, want 3", level)
	}

	counts := map[string]int{"users": 1, "categories": 1, "items": 1}
	for table, want := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s count: got %d, want %d", table, got, want)
		}
	}

	var pinned bool
	if err := db.QueryRow("SELECT pinned FROM items WHERE id = 1").Scan(&pinned); err != nil {
		t.Fatalf("select pinned: %v", err)
	}
	if !pinned {
		t.Error("seeded item should be pinned")
	}
}

func TestMigratePostgres(t *testing.T) {
	db, err := Connect(DriverPostgres, testPostgresDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	if db.Stats().MaxOpenConnections != 25 {
		t.Errorf("max open conns: got %d, want 25", db.Stats().MaxOpenConnections)
	}

	if err := Migrate(db, DriverPostgres); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(db, DriverPostgres); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range tables {
		var exists bool
		err := db.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		if err != nil {
			t.Errorf("check table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist after migration", table)
		}
	}
}
