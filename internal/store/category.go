// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starwishes/Nav/internal/models"
)

// DefaultCategoryName is used when a category is created without a name.
const DefaultCategoryName = "New Category"

// AddCategory inserts a category with id max+1 at the end of the list.
// Reading the max and inserting happen in one serialized transaction.
func (s *BookmarkStore) AddCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	c := models.Category{Name: in.Name, Icon: in.Icon, Level: in.Level}
	if c.Name == "" {
		c.Name = DefaultCategoryName
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			maxID sql.NullInt64
			count int
		)
		if err := tx.QueryRowContext(ctx, `SELECT MAX(id), COUNT(*) FROM categories`).Scan(&maxID, &count); err != nil {
			return fmt.Errorf("next category id: %w", err)
		}
		c.ID = maxID.Int64 + 1
		c.SortOrder = count
		return insertCategory(ctx, tx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}
	return &c, nil
}

// FindCategory retrieves a category by id. Returns nil if not found.
func (s *BookmarkStore) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// UpdateCategory changes the editable fields of a category. Its id and
// position are kept.
func (s *BookmarkStore) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	var out *models.Category
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		name := in.Name
		if name == "" {
			name = DefaultCategoryName
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE categories SET name = $1, icon = $2, level = $3 WHERE id = $4
		`, name, in.Icon, in.Level, id)
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		out, err = scanCategory(tx.QueryRowContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCategory removes a category. Items that referenced it keep living
// with a null category. The foreign key also sets them to null; the
// explicit update keeps the behaviour independent of the FK pragma.
func (s *BookmarkStore) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET category_id = NULL WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("detach items: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
