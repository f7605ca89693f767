// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

// DefaultItemName is used when an item is created without a name.
const DefaultItemName = "Untitled"

// AddItem inserts an item with id max+1 at the end of the list. The
// category must exist. Reading the max and inserting happen in one
// serialized transaction.
func (s *BookmarkStore) AddItem(ctx context.Context, in models.ItemInput) (*models.Item, error) {
	it := models.Item{
		Name:        in.Name,
		URL:         in.URL,
		Description: in.Description,
		Icon:        in.Icon,
		CategoryID:  in.CategoryID,
		Pinned:      in.Pinned,
		Level:       in.Level,
		Tags:        append([]string{}, in.Tags...),
	}
	if it.Name == "" {
		it.Name = DefaultItemName
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkReference(ctx, tx, it.CategoryID); err != nil {
			return err
		}
		id, count, err := nextItemSlot(ctx, tx)
		if err != nil {
			return err
		}
		it.ID = id
		it.SortOrder = count
		return insertItem(ctx, tx, it)
	})
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return &it, nil
}

// UpdateItem changes the editable fields of an item. Click statistics,
// id and position are kept.
func (s *BookmarkStore) UpdateItem(ctx context.Context, id int64, in models.ItemInput) (*models.Item, error) {
	var out *models.Item
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkReference(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		name := in.Name
		if name == "" {
			name = DefaultItemName
		}
		tags, err := encodeTags(in.Tags)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE items
			SET name = $1, url = $2, description = $3, icon = $4, category_id = $5,
			    pinned = $6, level = $7, tags = $8
			WHERE id = $9
		`, name, in.URL, in.Description, in.Icon, in.CategoryID, in.Pinned, in.Level, tags, id)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		out, err = findItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TrackClick increments the click counter of an item and records the
// visit time. Returns ErrNotFound if the item does not exist.
func (s *BookmarkStore) TrackClick(ctx context.Context, id int64, at time.Time) (*models.Item, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET click_count = click_count + 1, last_visited = $1 WHERE id = $2
	`, dbTime(at), id)
	if err != nil {
		return nil, fmt.Errorf("track click: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	it, err := findItem(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("reload clicked item: %w", err)
	}
	if it == nil {
		return nil, ErrNotFound
	}
	return it, nil
}

// checkReference verifies that a non-nil category id exists.
func checkReference(ctx context.Context, q queryer, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	ok, err := categoryExists(ctx, q, *categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d: %w", *categoryID, ErrInvalidReference)
	}
	return nil
}

// deleteItem removes a live item inside tx and returns its last state.
func deleteItem(ctx context.Context, tx *sql.Tx, id int64) (*models.Item, error) {
	it, err := findItem(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if it == nil {
		return nil, ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return it, nil
}
