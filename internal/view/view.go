// Package view computes what a viewer of a given level may see of the
// bookmark graph. Everything here is pure: the raw graph is never
// modified and every result is built in fresh slices.
package view

import (
	"slices"

	"github.com/starwishes/Nav/internal/models"
)

// View is the permission-filtered part of a graph. Item values share
// their tag slices with the source graph and must be treated as read-only.
type View struct {
	Categories []models.Category `json:"categories"`
	Items      []models.Item     `json:"items"`
}

// Project keeps the categories and items whose level does not exceed
// level. An item is kept only if its category is kept as well, so items
// without a category or under a hidden category are never visible.
func Project(g *models.Graph, level int) View {
	v := View{
		Categories: []models.Category{},
		Items:      []models.Item{},
	}
	if g == nil {
		return v
	}

	visible := make(map[int64]struct{}, len(g.Categories))
	for _, c := range g.Categories {
		if c.Level <= level {
			v.Categories = append(v.Categories, c)
			visible[c.ID] = struct{}{}
		}
	}
	for _, it := range g.Items {
		if it.Level > level || it.CategoryID == nil {
			continue
		}
		if _, ok := visible[*it.CategoryID]; ok {
			v.Items = append(v.Items, it)
		}
	}
	return v
}

// Tags returns the distinct tags of the visible items, sorted.
func (v View) Tags() []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, it := range v.Items {
		for _, t := range it.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return tags
}

// WithTags narrows the view to items carrying at least one of tags.
// Categories are kept as they are. No tags means no filtering.
func (v View) WithTags(tags ...string) View {
	if len(tags) == 0 {
		return v
	}
	out := View{
		Categories: v.Categories,
		Items:      []models.Item{},
	}
	for _, it := range v.Items {
		for _, t := range tags {
			if slices.Contains(it.Tags, t) {
				out.Items = append(out.Items, it)
				break
			}
		}
	}
	return out
}
