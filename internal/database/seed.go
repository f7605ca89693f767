package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SeedOptions configures the first-run data.
type SeedOptions struct {
	AdminUsername string
	AdminPassword string
}

// Seed populates an empty database with first-run data. It creates the
// admin account when no users exist, and a starter category with one
// pinned link when the bookmark tree is empty. It runs after the legacy
// importer so imported data always takes precedence.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if err := seedAdmin(ctx, db, opts); err != nil {
		return err
	}
	return seedBookmarks(ctx, db)
}

func seedAdmin(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Debug("users already present, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (username, password, level, created_at)
		VALUES ($1, $2, $3, $4)
	`, opts.AdminUsername, string(hash), 3, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user", "username", opts.AdminUsername)
	return nil
}

func seedBookmarks(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, level, sort_order)
		VALUES (1, 'Recommended', '', 0, 0)
	`); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO items (id, name, url, description, icon, category_id, pinned, level, tags, click_count, sort_order)
		VALUES (1, 'Google', 'https://www.google.com', '', '', 1, $1, 0, '[]', 0, 0)
	`, true); err != nil {
		return fmt.Errorf("seed insert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default bookmarks")
	return nil
}
