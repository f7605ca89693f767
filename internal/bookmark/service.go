// Package bookmark is the bookmark dashboard core: it reads the graph
// through the in-process cache, writes through the store and drops the
// cache only after a write has committed.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starwishes/Nav/internal/cache"
	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/store"
	"github.com/starwishes/Nav/internal/view"
)

// Audit actions written for bookmark mutations.
const (
	ActionReplaceAll     = "BOOKMARKS_SAVE"
	ActionAddItem        = "ITEM_ADD"
	ActionUpdateItem     = "ITEM_UPDATE"
	ActionDeleteItem     = "ITEM_DELETE"
	ActionAddCategory    = "CATEGORY_ADD"
	ActionUpdateCategory = "CATEGORY_UPDATE"
	ActionDeleteCategory = "CATEGORY_DELETE"
	ActionRestoreItem    = "TRASH_RESTORE"
	ActionPurgeItem      = "TRASH_DELETE"
	ActionEmptyTrash     = "TRASH_EMPTY"
)

// DefaultSearchLimit is used when a search asks for no limit.
const DefaultSearchLimit = 20

// MaxSearchLimit caps the number of search results.
const MaxSearchLimit = 100

// Auditor records who changed what. Implementations must not fail the
// caller; store.AuditStore logs and swallows its own errors.
type Auditor interface {
	Log(ctx context.Context, username, action, details, ip string)
}

// Actor identifies the user behind a mutation.
type Actor struct {
	Username string
	IP       string
}

// Service implements the bookmark operations.
type Service struct {
	bookmarks *store.BookmarkStore
	recycle   *store.RecycleStore
	graph     *cache.GraphCache
	audit     Auditor

	retention time.Duration
	now       func() time.Time
}

// NewService wires a Service to its store. The graph cache is created
// here and filled from bookmarks on first read.
func NewService(bookmarks *store.BookmarkStore, recycle *store.RecycleStore, audit Auditor) *Service {
	return &Service{
		bookmarks: bookmarks,
		recycle:   recycle,
		graph:     cache.NewGraphCache(bookmarks.LoadGraph),
		audit:     audit,
		now:       time.Now,
	}
}

// SetRecycleRetention makes item deletion purge recycle entries older
// than d. Zero keeps entries until they are removed explicitly.
func (s *Service) SetRecycleRetention(d time.Duration) {
	s.retention = d
}

// Cache exposes the graph cache for health and metrics reporting.
func (s *Service) Cache() *cache.GraphCache {
	return s.graph
}

// Graph returns the raw, unfiltered graph. The result is shared; clone
// it before making changes.
func (s *Service) Graph(ctx context.Context) (*models.Graph, error) {
	g, err := s.graph.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	return g, nil
}

// GetView returns the part of the graph visible at the given level.
func (s *Service) GetView(ctx context.Context, level int) (view.View, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return view.View{}, err
	}
	return view.Project(g, level), nil
}

// ReplaceAll stores g as the complete bookmark tree.
func (s *Service) ReplaceAll(ctx context.Context, actor Actor, g *models.Graph) error {
	if err := validateGraph(g); err != nil {
		return err
	}
	err := s.bookmarks.ReplaceAll(ctx, g.Categories, g.Items)
	s.finish(ctx, actor, ActionReplaceAll,
		fmt.Sprintf("%d categories, %d items", len(g.Categories), len(g.Items)), err)
	return err
}

// AddItem creates an item with the next free id at the end of the list.
func (s *Service) AddItem(ctx context.Context, actor Actor, in models.ItemInput) (*models.Item, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := checkStruct("", in); err != nil {
		return nil, err
	}
	it, err := s.bookmarks.AddItem(ctx, in)
	s.finish(ctx, actor, ActionAddItem, describeItem(it, in.URL), err)
	return it, translate(err)
}

// UpdateItem replaces the editable fields of an item.
func (s *Service) UpdateItem(ctx context.Context, actor Actor, id int64, in models.ItemInput) (*models.Item, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := checkStruct("", in); err != nil {
		return nil, err
	}
	it, err := s.bookmarks.UpdateItem(ctx, id, in)
	s.finish(ctx, actor, ActionUpdateItem, describeItem(it, in.URL), err)
	return it, translate(err)
}

// DeleteItem moves an item to the recycle bin.
func (s *Service) DeleteItem(ctx context.Context, actor Actor, id int64) (*models.RecycleEntry, error) {
	entry, err := s.recycle.MoveToTrash(ctx, id, actor.Username)
	var details string
	if entry != nil {
		details = describeItem(&entry.Item, "")
	}
	s.finish(ctx, actor, ActionDeleteItem, details, err)
	if err != nil {
		return nil, err
	}
	s.purgeExpired(ctx)
	return entry, nil
}

// AddCategory creates a category with the next free id at the end.
func (s *Service) AddCategory(ctx context.Context, actor Actor, in models.CategoryInput) (*models.Category, error) {
	if err := checkStruct("", in); err != nil {
		return nil, err
	}
	c, err := s.bookmarks.AddCategory(ctx, in)
	s.finish(ctx, actor, ActionAddCategory, describeCategory(c), err)
	return c, err
}

// UpdateCategory replaces the editable fields of a category.
func (s *Service) UpdateCategory(ctx context.Context, actor Actor, id int64, in models.CategoryInput) (*models.Category, error) {
	if err := checkStruct("", in); err != nil {
		return nil, err
	}
	c, err := s.bookmarks.UpdateCategory(ctx, id, in)
	s.finish(ctx, actor, ActionUpdateCategory, describeCategory(c), err)
	return c, err
}

// DeleteCategory removes a category. Its items stay in the store without
// a category and are hidden from every view until reassigned.
func (s *Service) DeleteCategory(ctx context.Context, actor Actor, id int64) error {
	err := s.bookmarks.DeleteCategory(ctx, id)
	s.finish(ctx, actor, ActionDeleteCategory, fmt.Sprintf("category %d", id), err)
	return err
}

// TrackClick counts a visit of the item. Unknown items return
// store.ErrNotFound and leave the cache untouched.
func (s *Service) TrackClick(ctx context.Context, id int64) (*models.Item, error) {
	it, err := s.bookmarks.TrackClick(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.graph.Invalidate()
	return it, nil
}

// CheckURL returns the item stored under url, compared trimmed and
// case-insensitively, or nil if there is none.
func (s *Service) CheckURL(ctx context.Context, url string) (*models.Item, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}
	return s.bookmarks.FindByURL(ctx, url)
}

// Search matches keyword against item names, URLs and descriptions. An
// empty keyword returns the most recently visited items instead.
func (s *Service) Search(ctx context.Context, keyword string, limit int) ([]models.SearchResult, error) {
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return s.bookmarks.Search(ctx, keyword, limit)
}

// Trash returns the recycle bin, most recently deleted first.
func (s *Service) Trash(ctx context.Context) ([]models.RecycleEntry, error) {
	return s.recycle.List(ctx)
}

// Restore puts a recycled item back into the live tree.
func (s *Service) Restore(ctx context.Context, actor Actor, recycleID string) (*models.Item, error) {
	it, err := s.recycle.Restore(ctx, recycleID)
	s.finish(ctx, actor, ActionRestoreItem, describeItem(it, recycleID), err)
	return it, err
}

// PermanentDelete removes one recycle entry for good.
func (s *Service) PermanentDelete(ctx context.Context, actor Actor, recycleID string) error {
	err := s.recycle.PermanentDelete(ctx, recycleID)
	s.log(ctx, actor, ActionPurgeItem, recycleID, err)
	return err
}

// EmptyTrash removes every recycle entry and returns how many there were.
func (s *Service) EmptyTrash(ctx context.Context, actor Actor) (int64, error) {
	n, err := s.recycle.Empty(ctx)
	s.log(ctx, actor, ActionEmptyTrash, fmt.Sprintf("%d entries", n), err)
	return n, err
}

// PurgeTrash removes recycle entries deleted more than age ago.
func (s *Service) PurgeTrash(ctx context.Context, actor Actor, age time.Duration) (int64, error) {
	n, err := s.recycle.PurgeOlderThan(ctx, s.now().Add(-age))
	s.log(ctx, actor, ActionEmptyTrash, fmt.Sprintf("%d entries older than %s", n, age), err)
	return n, err
}

// finish drops the graph cache after a successful write and records
// the mutation either way.
func (s *Service) finish(ctx context.Context, actor Actor, action, details string, err error) {
	if err == nil {
		s.graph.Invalidate()
	}
	s.log(ctx, actor, action, details, err)
}

// log emits the mutation event and mirrors successful ones to the audit
// log. Recycle bin cleanup goes through here too but never touches the
// live graph.
func (s *Service) log(ctx context.Context, actor Actor, action, details string, err error) {
	if err != nil {
		mutations.WithLabelValues(action, "error").Inc()
		level := slog.LevelError
		if IsValidation(err) || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidReference) {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "bookmark mutation failed",
			"action", action, "actor", actor.Username, "outcome", "error", "error", err)
		return
	}
	mutations.WithLabelValues(action, "ok").Inc()
	slog.Info("bookmark mutation",
		"action", action, "actor", actor.Username, "outcome", "ok", "details", details)
	if s.audit != nil {
		s.audit.Log(ctx, actor.Username, action, details, actor.IP)
	}
}

func (s *Service) purgeExpired(ctx context.Context) {
	if s.retention <= 0 {
		return
	}
	n, err := s.recycle.PurgeOlderThan(ctx, s.now().Add(-s.retention))
	if err != nil {
		slog.Warn("recycle retention purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("recycle entries expired", "count", n, "retention", s.retention)
	}
}

// translate turns a missing category reference into a validation error
// on the categoryId field.
func translate(err error) error {
	if errors.Is(err, store.ErrInvalidReference) {
		return &ValidationError{Field: "categoryId", Message: err.Error()}
	}
	return err
}

func describeItem(it *models.Item, fallback string) string {
	if it == nil {
		return fallback
	}
	return fmt.Sprintf("%d %s (%s)", it.ID, it.Name, it.URL)
}

func describeCategory(c *models.Category) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%d %s", c.ID, c.Name)
}
