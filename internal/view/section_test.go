package view

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/starwishes/Nav/internal/models"
)

func TestSectionsPinnedFirst(t *testing.T) {
	sections := Project(sampleGraph(), 2).Sections()

	if len(sections) != 4 {
		t.Fatalf("got %d sections, want 4", len(sections))
	}
	if sections[0].Kind != Pinned || sections[0].Category != nil {
		t.Fatalf("first section: got %v, want pinned", sections[0].Kind)
	}
	if got := itemIDs(sections[0].Items); !equalIDs(got, []int64{10, 12}) {
		t.Errorf("pinned items: got %v, want [10 12]", got)
	}

	wantCats := []int64{1, 2, 3}
	for i, want := range wantCats {
		s := sections[i+1]
		if s.Kind != Real || s.Category.ID != want {
			t.Errorf("section %d: got %v, want category %d", i+1, s.Kind, want)
		}
	}
	// Pinned items stay in their own category too.
	if got := itemIDs(sections[1].Items); !equalIDs(got, []int64{10}) {
		t.Errorf("category 1 items: got %v, want [10]", got)
	}
}

func TestSectionsWithoutPinned(t *testing.T) {
	g := &models.Graph{
		Categories: []models.Category{
			{ID: 2, Name: "second", SortOrder: 1},
			{ID: 1, Name: "first", SortOrder: 0},
		},
		Items: []models.Item{
			{ID: 1, CategoryID: id(1), SortOrder: 1},
			{ID: 2, CategoryID: id(1), SortOrder: 0},
		},
	}
	sections := Project(g, 0).Sections()
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Category.Name != "first" {
		t.Errorf("first section: got %q, want %q", sections[0].Category.Name, "first")
	}
	if got := itemIDs(sections[0].Items); !equalIDs(got, []int64{2, 1}) {
		t.Errorf("items: got %v, want [2 1]", got)
	}
	if sections[1].Items == nil {
		t.Error("empty category must have an empty item list")
	}
}

func TestSectionMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Section{Kind: Pinned, Items: []models.Item{}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"kind":"pinned"`) || strings.Contains(got, `"category"`) {
		t.Errorf("got %s", got)
	}
}

func TestSectionAnchors(t *testing.T) {
	g := &models.Graph{
		Categories: []models.Category{
			{ID: 1, Name: "Dev Tools", SortOrder: 0},
			{ID: 2, Name: "dev tools!", SortOrder: 1},
			{ID: 3, Name: "★★★", SortOrder: 2},
			{ID: 4, Name: "Pinned", SortOrder: 3},
		},
		Items: []models.Item{
			{ID: 1, CategoryID: id(1), Pinned: true},
		},
	}
	sections := Project(g, 0).Sections()

	want := []string{PinnedAnchor, "dev-tools", "dev-tools-2", "category-3", "pinned-2"}
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(sections), len(want))
	}
	for i, w := range want {
		if sections[i].Anchor != w {
			t.Errorf("section %d anchor: got %q, want %q", i, sections[i].Anchor, w)
		}
	}

	b, err := json.Marshal(sections[1])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"anchor":"dev-tools"`) {
		t.Errorf("got %s", b)
	}
}
