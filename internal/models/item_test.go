package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestItemUnmarshalCoercesLooseTypes(t *testing.T) {
	data := `{
		"id": "7",
		"name": "Go",
		"url": "https://go.dev",
		"categoryId": "3",
		"pinned": 1,
		"level": "2",
		"tags": "[\"lang\",\"docs\"]",
		"clickCount": 4.0,
		"lastVisited": "2024-05-01 10:20:30"
	}`

	var it Item
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if it.ID != 7 {
		t.Errorf("ID = %d, want 7", it.ID)
	}
	if it.CategoryID == nil || *it.CategoryID != 3 {
		t.Errorf("CategoryID = %v, want 3", it.CategoryID)
	}
	if !it.Pinned {
		t.Error("Pinned = false, want true")
	}
	if it.Level != 2 {
		t.Errorf("Level = %d, want 2", it.Level)
	}
	if len(it.Tags) != 2 || it.Tags[0] != "lang" || it.Tags[1] != "docs" {
		t.Errorf("Tags = %v, want [lang docs]", it.Tags)
	}
	if it.ClickCount != 4 {
		t.Errorf("ClickCount = %d, want 4", it.ClickCount)
	}
	want := time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)
	if it.LastVisited == nil || !it.LastVisited.Equal(want) {
		t.Errorf("LastVisited = %v, want %v", it.LastVisited, want)
	}
}

func TestItemUnmarshalNullCategory(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "null", data: `{"id": 1, "categoryId": null}`},
		{name: "empty string", data: `{"id": 1, "categoryId": ""}`},
		{name: "absent", data: `{"id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var it Item
			if err := json.Unmarshal([]byte(tt.data), &it); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if it.CategoryID != nil {
				t.Errorf("CategoryID = %d, want nil", *it.CategoryID)
			}
			if it.Tags == nil {
				t.Error("Tags = nil, want empty slice")
			}
		})
	}
}

func TestItemUnmarshalMinLevelAlias(t *testing.T) {
	var in ItemInput
	if err := json.Unmarshal([]byte(`{"url": "https://a.example", "categoryId": 1, "minLevel": "2"}`), &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if in.Level != 2 {
		t.Errorf("Level = %d, want 2", in.Level)
	}

	var c CategoryInput
	if err := json.Unmarshal([]byte(`{"name": "Dev", "minLevel": 1}`), &c); err != nil {
		t.Fatalf("Unmarshal category: %v", err)
	}
	if c.Level != 1 || c.Name != "Dev" {
		t.Errorf("CategoryInput = %+v, want Dev/1", c)
	}
}

func TestItemUnmarshalRejectsGarbage(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id": "seven"}`), &it); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestItemUnmarshalCommaTags(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id": 1, "tags": "a, b ,,c"}`), &it); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(it.Tags) != 3 || it.Tags[1] != "b" {
		t.Errorf("Tags = %v, want [a b c]", it.Tags)
	}
}

func TestGraphCloneIsDeep(t *testing.T) {
	cat := int64(1)
	now := time.Now()
	g := &Graph{
		Categories: []Category{{ID: 1, Name: "A"}},
		Items:      []Item{{ID: 1, CategoryID: &cat, Tags: []string{"x"}, LastVisited: &now}},
	}

	c := g.Clone()
	c.Categories[0].Name = "changed"
	*c.Items[0].CategoryID = 99
	c.Items[0].Tags[0] = "y"

	if g.Categories[0].Name != "A" {
		t.Errorf("original category name changed to %q", g.Categories[0].Name)
	}
	if *g.Items[0].CategoryID != 1 {
		t.Errorf("original categoryId changed to %d", *g.Items[0].CategoryID)
	}
	if g.Items[0].Tags[0] != "x" {
		t.Errorf("original tag changed to %q", g.Items[0].Tags[0])
	}
}
