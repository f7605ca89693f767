package view

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/slug"
)

// SectionKind tells a pinned section from a real category.
type SectionKind int

const (
	// Real is a stored category and its items.
	Real SectionKind = iota
	// Pinned is the synthetic section holding every visible pinned item.
	// It exists only in rendered output and is never stored.
	Pinned
)

func (k SectionKind) String() string {
	if k == Pinned {
		return "pinned"
	}
	return "category"
}

// PinnedAnchor is the anchor of the pinned section.
const PinnedAnchor = "pinned"

// Section is one block of the rendered dashboard. Category is set only
// for Real sections. Anchor is unique within one Sections call.
type Section struct {
	Kind     SectionKind
	Anchor   string
	Category *models.Category
	Items    []models.Item
}

// MarshalJSON renders the section with its kind as a string.
func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string           `json:"kind"`
		Anchor   string           `json:"anchor"`
		Category *models.Category `json:"category,omitempty"`
		Items    []models.Item    `json:"items"`
	}{s.Kind.String(), s.Anchor, s.Category, s.Items})
}

// Sections lays the view out for display: a Pinned section first when any
// visible item is pinned, then one Real section per visible category in
// sort order. Pinned items also stay in their own category. Categories
// are anchored by the slug of their name, or category-<id> when the name
// has no letters or digits.
func (v View) Sections() []Section {
	byCategory := make(map[int64][]models.Item, len(v.Categories))
	pinned := []models.Item{}
	for _, it := range v.Items {
		if it.CategoryID == nil {
			continue
		}
		byCategory[*it.CategoryID] = append(byCategory[*it.CategoryID], it)
		if it.Pinned {
			pinned = append(pinned, it)
		}
	}

	cats := slices.Clone(v.Categories)
	slices.SortStableFunc(cats, func(a, b models.Category) int {
		return cmp.Compare(a.SortOrder, b.SortOrder)
	})

	anchors := slug.NewSet()
	sections := make([]Section, 0, len(cats)+1)
	if len(pinned) > 0 {
		sections = append(sections, Section{Kind: Pinned, Anchor: anchors.Add(PinnedAnchor, PinnedAnchor), Items: pinned})
	}
	for i := range cats {
		items := byCategory[cats[i].ID]
		if items == nil {
			items = []models.Item{}
		}
		slices.SortStableFunc(items, func(a, b models.Item) int {
			return cmp.Compare(a.SortOrder, b.SortOrder)
		})
		anchor := anchors.Add(cats[i].Name, "category-"+strconv.FormatInt(cats[i].ID, 10))
		sections = append(sections, Section{Kind: Real, Anchor: anchor, Category: &cats[i], Items: items})
	}
	return sections
}
