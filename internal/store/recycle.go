// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// recycle.go implements soft deletion for bookmark items. A deleted item
// is snapshotted into recycle_bin in the same transaction that removes it
// from the live tree, so a crash can never lose or duplicate it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starwishes/Nav/internal/models"
)

const recycleTypeItem = "item"

// RecycleStore handles the recycle_bin table. It shares the write lock of
// the BookmarkStore it was created from.
type RecycleStore struct {
	bookmarks *BookmarkStore
}

// NewRecycleStore creates a new RecycleStore bound to the bookmark tree.
func NewRecycleStore(bookmarks *BookmarkStore) *RecycleStore {
	return &RecycleStore{bookmarks: bookmarks}
}

// MoveToTrash deletes a live item and stores its snapshot. Returns
// ErrNotFound if the item does not exist.
func (s *RecycleStore) MoveToTrash(ctx context.Context, itemID int64, actor string) (*models.RecycleEntry, error) {
	var entry *models.RecycleEntry
	err := s.bookmarks.withTx(ctx, func(tx *sql.Tx) error {
		it, err := deleteItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		entry = &models.RecycleEntry{
			ID:        uuid.NewString(),
			Item:      *it,
			DeletedBy: actor,
			DeletedAt: now(),
		}
		return insertRecycleEntry(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all recycle entries, most recently deleted first.
func (s *RecycleStore) List(ctx context.Context) ([]models.RecycleEntry, error) {
	rows, err := s.bookmarks.db.QueryContext(ctx, `
		SELECT id, data, deleted_by, deleted_at
		FROM recycle_bin
		WHERE type = $1
		ORDER BY deleted_at DESC, id
	`, recycleTypeItem)
	if err != nil {
		return nil, fmt.Errorf("list recycle bin: %w", err)
	}
	defer rows.Close()

	entries := []models.RecycleEntry{}
	for rows.Next() {
		e, err := scanRecycleEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Restore puts a recycled item back into the live tree and removes the
// entry. If the original id is taken the item gets max(id)+1; if its
// category no longer exists the item is restored uncategorized. The item
// is appended to the end of the list. Returns ErrNotFound for an unknown
// entry.
func (s *RecycleStore) Restore(ctx context.Context, recycleID string) (*models.Item, error) {
	var restored models.Item
	err := s.bookmarks.withTx(ctx, func(tx *sql.Tx) error {
		e, err := scanRecycleEntry(tx.QueryRowContext(ctx, `
			SELECT id, data, deleted_by, deleted_at FROM recycle_bin WHERE id = $1
		`, recycleID))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		it := e.Item
		nextID, count, err := nextItemSlot(ctx, tx)
		if err != nil {
			return err
		}
		existing, err := findItem(ctx, tx, it.ID)
		if err != nil {
			return fmt.Errorf("check item id: %w", err)
		}
		if existing != nil || it.ID <= 0 {
			it.ID = nextID
		}
		if it.CategoryID != nil {
			ok, err := categoryExists(ctx, tx, *it.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				it.CategoryID = nil
			}
		}
		it.SortOrder = count

		if err := insertItem(ctx, tx, it); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recycle_bin WHERE id = $1`, recycleID); err != nil {
			return fmt.Errorf("remove recycle entry: %w", err)
		}
		restored = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// PermanentDelete removes one entry. Returns ErrNotFound if it does not exist.
func (s *RecycleStore) PermanentDelete(ctx context.Context, recycleID string) error {
	res, err := s.bookmarks.db.ExecContext(ctx, `DELETE FROM recycle_bin WHERE id = $1`, recycleID)
	if err != nil {
		return fmt.Errorf("delete recycle entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Empty removes every entry and returns how many were removed.
func (s *RecycleStore) Empty(ctx context.Context) (int64, error) {
	res, err := s.bookmarks.db.ExecContext(ctx, `DELETE FROM recycle_bin`)
	if err != nil {
		return 0, fmt.Errorf("empty recycle bin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PurgeOlderThan removes entries deleted before cutoff.
func (s *RecycleStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.bookmarks.db.ExecContext(ctx,
		`DELETE FROM recycle_bin WHERE deleted_at < $1`, dbTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge recycle bin: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func insertRecycleEntry(ctx context.Context, q queryer, e *models.RecycleEntry) error {
	data, err := json.Marshal(e.Item)
	if err != nil {
		return fmt.Errorf("encode recycle snapshot: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO recycle_bin (id, type, data, deleted_by, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, recycleTypeItem, string(data), e.DeletedBy, dbTime(e.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert recycle entry: %w", err)
	}
	return nil
}

func scanRecycleEntry(row scanner) (*models.RecycleEntry, error) {
	var (
		e    models.RecycleEntry
		data string
	)
	if err := row.Scan(&e.ID, &data, &e.DeletedBy, &e.DeletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan recycle entry: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &e.Item); err != nil {
		return nil, fmt.Errorf("decode recycle snapshot %s: %w", e.ID, err)
	}
	e.DeletedAt = e.DeletedAt.UTC()
	return &e, nil
}
