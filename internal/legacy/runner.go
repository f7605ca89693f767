// Package legacy imports the flat JSON files written by earlier releases
// into the relational store. Each entity is imported at most once: an
// entity whose table already holds rows is skipped, and a source file is
// renamed to <name>.migrated.bak after its import has committed.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starwishes/Nav/internal/store"
)

// ArchiveSuffix is appended to a source file once it has been imported.
const ArchiveSuffix = ".migrated.bak"

// errNoSource means no candidate file exists for an entity.
var errNoSource = errors.New("no legacy source")

// Result describes the import of one entity.
type Result struct {
	// Source is the file that was imported, empty if none.
	Source string
	// Imported is the number of rows written.
	Imported int
	// Skipped is set when the entity already had data or no file was found.
	Skipped bool
	// Err is set when the import failed. Other entities are unaffected.
	Err error
}

// Report collects the results of one Run.
type Report struct {
	Bookmarks Result
	Users     Result
	Settings  Result
}

// Runner imports legacy bookmarks, accounts and settings from a data
// directory.
type Runner struct {
	dir   string
	admin string

	bookmarks *store.BookmarkStore
	users     *store.UserStore
	settings  *store.SettingStore
}

// NewRunner creates a runner reading from dir. admin is the account whose
// personal bookmark file is tried after data.json.
func NewRunner(dir, admin string, bookmarks *store.BookmarkStore, users *store.UserStore, settings *store.SettingStore) *Runner {
	return &Runner{
		dir:       dir,
		admin:     admin,
		bookmarks: bookmarks,
		users:     users,
		settings:  settings,
	}
}

// Run imports every entity independently. A failure in one entity is
// logged and reported but never stops the others.
func (r *Runner) Run(ctx context.Context) Report {
	slog.Info("legacy import check started", "dir", r.dir)
	rep := Report{
		Bookmarks: r.runStep(ctx, "bookmarks", r.importBookmarks),
		Users:     r.runStep(ctx, "users", r.importUsers),
		Settings:  r.runStep(ctx, "settings", r.importSettings),
	}
	slog.Info("legacy import check finished")
	return rep
}

func (r *Runner) runStep(ctx context.Context, entity string, step func(context.Context) Result) Result {
	res := step(ctx)
	switch {
	case res.Err != nil:
		slog.Error("legacy import failed", "entity", entity, "source", res.Source, "error", res.Err)
	case res.Skipped:
		slog.Debug("legacy import skipped", "entity", entity)
	default:
		slog.Info("legacy import done", "entity", entity, "source", res.Source, "rows", res.Imported)
	}
	return res
}

func (r *Runner) path(elem ...string) string {
	return filepath.Join(append([]string{r.dir}, elem...)...)
}

// archive renames an imported file out of the way. Failure is logged
// only: the import is committed and the row checks keep it from
// running twice.
func archive(path string) {
	dst := path + ArchiveSuffix
	if err := os.Rename(path, dst); err != nil {
		slog.Warn("failed to archive legacy file", "path", path, "error", err)
		return
	}
	slog.Info("legacy file archived", "path", dst)
}

// readFile returns errNoSource for missing files.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNoSource
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
