package bookmark

import (
	"fmt"

	"github.com/starwishes/Nav/internal/models"
)

// validateGraph checks a full-tree payload before it replaces the stored
// tree: both lists present, ids unique, field limits respected and every
// item category present in the same payload.
func validateGraph(g *models.Graph) error {
	if g == nil || g.Categories == nil || g.Items == nil {
		return invalid("", "categories and items are required")
	}

	cats := make(map[int64]struct{}, len(g.Categories))
	for i, c := range g.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if err := checkStruct(field, c); err != nil {
			return err
		}
		if _, dup := cats[c.ID]; dup {
			return invalid(field+".id", "duplicate id %d", c.ID)
		}
		cats[c.ID] = struct{}{}
	}

	items := make(map[int64]struct{}, len(g.Items))
	for i, it := range g.Items {
		field := fmt.Sprintf("items[%d]", i)
		if err := checkStruct(field, it); err != nil {
			return err
		}
		if _, dup := items[it.ID]; dup {
			return invalid(field+".id", "duplicate id %d", it.ID)
		}
		items[it.ID] = struct{}{}
		if it.CategoryID == nil {
			continue
		}
		if _, ok := cats[*it.CategoryID]; !ok {
			return invalid(field+".categoryId", "unknown category %d", *it.CategoryID)
		}
	}
	return nil
}
