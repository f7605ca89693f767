// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starwishes/Nav/internal/models"
)

const itemColumns = `id, name, url, description, icon, category_id, pinned, level, tags,
	click_count, last_visited, sort_order`

const categoryColumns = `id, name, icon, level, sort_order`

// searchColumns is itemColumns qualified with the items alias "i".
var searchColumns = "i." + strings.ReplaceAll(strings.Join(strings.Fields(itemColumns), " "), ", ", ", i.")

// BookmarkStore handles the category and item tables.
//
// Writes that read before they insert (next id, next sort order) are
// serialized by mu so two concurrent adds in this process can never pick
// the same id. The recycle bin shares the same lock.
type BookmarkStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewBookmarkStore creates a new BookmarkStore.
func NewBookmarkStore(db *sql.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// withTx runs fn in a serialized write transaction.
func (s *BookmarkStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return runTx(ctx, s.db, fn)
}

// LoadGraph reads the full, unfiltered bookmark tree in display order.
func (s *BookmarkStore) LoadGraph(ctx context.Context) (*models.Graph, error) {
	g := &models.Graph{Categories: []models.Category{}, Items: []models.Item{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		g.Categories = append(g.Categories, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		g.Items = append(g.Items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return g, nil
}

// ReplaceAll atomically replaces the whole tree. Ids are kept as given
// and each record's position in its slice becomes its sort order. On any
// failure the previous tree is left untouched.
func (s *BookmarkStore) ReplaceAll(ctx context.Context, categories []models.Category, items []models.Item) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}

		for i, c := range categories {
			c.SortOrder = i
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		for i, it := range items {
			it.SortOrder = i
			if err := insertItem(ctx, tx, it); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountCategories returns the number of stored categories.
func (s *BookmarkStore) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// FindItem retrieves an item by id. Returns nil if not found.
func (s *BookmarkStore) FindItem(ctx context.Context, id int64) (*models.Item, error) {
	it, err := findItem(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return it, nil
}

// FindByURL returns the first item whose URL matches after trimming and
// lowercasing both sides. Returns nil if no item matches.
func (s *BookmarkStore) FindByURL(ctx context.Context, url string) (*models.Item, error) {
	target := strings.ToLower(strings.TrimSpace(url))
	it, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE LOWER(TRIM(url)) = $1 ORDER BY id LIMIT 1`, target))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by url: %w", err)
	}
	return it, nil
}

// Search matches keyword case-insensitively against name, URL and
// description. An empty keyword returns the most recently visited items,
// never-visited items last.
func (s *BookmarkStore) Search(ctx context.Context, keyword string, limit int) ([]models.SearchResult, error) {
	base := `SELECT ` + searchColumns + `, c.name FROM items i LEFT JOIN categories c ON c.id = i.category_id`

	var (
		rows *sql.Rows
		err  error
	)
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		rows, err = s.db.QueryContext(ctx,
			base+` ORDER BY i.last_visited DESC NULLS LAST, i.id LIMIT $1`, limit)
	} else {
		pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
		rows, err = s.db.QueryContext(ctx, base+`
			WHERE LOWER(i.name) LIKE $1 ESCAPE '\'
			   OR LOWER(i.url) LIKE $1 ESCAPE '\'
			   OR LOWER(i.description) LIKE $1 ESCAPE '\'
			ORDER BY i.sort_order, i.id LIMIT $2`, pattern, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var (
			r       models.SearchResult
			catName sql.NullString
		)
		it, err := scanItemWith(rows, &catName)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		r.Item = *it
		r.CategoryName = models.UncategorizedName
		if catName.Valid {
			r.CategoryName = catName.String
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func findItem(ctx context.Context, q queryer, id int64) (*models.Item, error) {
	it, err := scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func categoryExists(ctx context.Context, q queryer, id int64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = $1`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}

// nextItemSlot returns max(id)+1 and the current item count.
func nextItemSlot(ctx context.Context, q queryer) (int64, int, error) {
	var (
		maxID sql.NullInt64
		count int
	)
	if err := q.QueryRowContext(ctx, `SELECT MAX(id), COUNT(*) FROM items`).Scan(&maxID, &count); err != nil {
		return 0, 0, fmt.Errorf("next item id: %w", err)
	}
	return maxID.Int64 + 1, count, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func insertItem(ctx context.Context, q queryer, it models.Item) error {
	tags, err := encodeTags(it.Tags)
	if err != nil {
		return err
	}

	var lastVisited any
	if it.LastVisited != nil {
		lastVisited = dbTime(*it.LastVisited)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, it.ID, it.Name, it.URL, it.Description, it.Icon, it.CategoryID, it.Pinned,
		it.Level, tags, it.ClickCount, lastVisited, it.SortOrder)
	if err != nil {
		return fmt.Errorf("insert item %d: %w", it.ID, err)
	}
	return nil
}

func insertCategory(ctx context.Context, q queryer, c models.Category) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.Icon, c.Level, c.SortOrder)
	if err != nil {
		return fmt.Errorf("insert category %d: %w", c.ID, err)
	}
	return nil
}

func scanCategory(row scanner) (*models.Category, error) {
	c := &models.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Level, &c.SortOrder); err != nil {
		return nil, err
	}
	return c, nil
}

func scanItem(row scanner) (*models.Item, error) {
	return scanItemWith(row)
}

// scanItemWith scans the item columns followed by any extra destinations.
func scanItemWith(row scanner, extra ...any) (*models.Item, error) {
	var (
		it          models.Item
		categoryID  sql.NullInt64
		tags        string
		lastVisited sql.NullTime
	)
	dest := []any{
		&it.ID, &it.Name, &it.URL, &it.Description, &it.Icon, &categoryID, &it.Pinned,
		&it.Level, &tags, &it.ClickCount, &lastVisited, &it.SortOrder,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	it.CategoryID = nullInt(categoryID)
	it.LastVisited = nullTime(lastVisited)
	it.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			slog.Warn("ignoring malformed item tags", "item_id", it.ID, "error", err)
			it.Tags = []string{}
		}
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return &it, nil
}
