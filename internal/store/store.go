// Package store provides database access methods for the bookmark
// dashboard. Each store struct wraps a *sql.DB and exposes typed query
// methods. SQL is shared between SQLite and PostgreSQL: placeholders are
// numbered in order of first use and timestamps are bound from Go.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by store methods. Lookups that find nothing
// return (nil, nil) instead; ErrNotFound is reserved for mutations that
// address a missing row.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrInvalidReference = errors.New("category does not exist")
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// runTx executes fn in a transaction and commits if fn returns nil.
func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// dbTime normalizes a timestamp for storage. SQLite keeps timestamps as
// text, so every stored value uses UTC at second precision to keep
// lexical and chronological order identical.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func now() time.Time {
	return dbTime(time.Now())
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
