package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starwishes/Nav/internal/models"
)

// bookmarkSource is one candidate location of the legacy bookmark file.
type bookmarkSource struct {
	name string
	path string
}

// bookmarkSources lists the candidates in the order they are tried.
func (r *Runner) bookmarkSources() []bookmarkSource {
	sources := []bookmarkSource{{name: "data.json", path: r.path("data.json")}}
	if r.admin != "" && r.admin != "admin" {
		sources = append(sources, bookmarkSource{
			name: "admin user file",
			path: r.path("users", r.admin+".json"),
		})
	}
	return sources
}

func (r *Runner) importBookmarks(ctx context.Context) Result {
	g, err := r.bookmarks.LoadGraph(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("check bookmarks: %w", err)}
	}
	// Orphaned items count as data too, since the import replaces the tree.
	if len(g.Categories) > 0 || len(g.Items) > 0 {
		return Result{Skipped: true}
	}

	for _, src := range r.bookmarkSources() {
		b, err := readFile(src.path)
		if errors.Is(err, errNoSource) {
			continue
		}
		if err != nil {
			slog.Warn("legacy bookmark source unreadable", "source", src.name, "error", err)
			continue
		}
		parsed, err := parseBookmarks(b)
		if err != nil {
			slog.Warn("legacy bookmark source invalid", "source", src.name, "path", src.path, "error", err)
			continue
		}

		if err := r.bookmarks.ReplaceAll(ctx, parsed.Categories, parsed.Items); err != nil {
			return Result{Source: src.path, Err: fmt.Errorf("import bookmarks: %w", err)}
		}
		archive(src.path)
		return Result{Source: src.path, Imported: len(parsed.Categories) + len(parsed.Items)}
	}
	return Result{Skipped: true}
}

// parseBookmarks decodes a legacy file and normalises it for import:
// the last occurrence of a duplicate id wins and categoryIds that point
// nowhere are cleared.
func parseBookmarks(b []byte) (*models.Graph, error) {
	var raw struct {
		Categories []models.Category `json:"categories"`
		Items      []models.Item     `json:"items"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	g := &models.Graph{
		Categories: dedupe(raw.Categories, func(c models.Category) int64 { return c.ID }),
		Items:      dedupe(raw.Items, func(it models.Item) int64 { return it.ID }),
	}
	known := make(map[int64]bool, len(g.Categories))
	for _, c := range g.Categories {
		known[c.ID] = true
	}
	for i := range g.Items {
		if id := g.Items[i].CategoryID; id != nil && !known[*id] {
			g.Items[i].CategoryID = nil
		}
		if g.Items[i].Tags == nil {
			g.Items[i].Tags = []string{}
		}
	}
	return g, nil
}

// dedupe keeps the last value for each id, at the position of that last
// occurrence.
func dedupe[T any](in []T, id func(T) int64) []T {
	last := make(map[int64]int, len(in))
	for i, v := range in {
		last[id(v)] = i
	}
	out := make([]T, 0, len(last))
	for i, v := range in {
		if last[id(v)] == i {
			out = append(out, v)
		}
	}
	return out
}
