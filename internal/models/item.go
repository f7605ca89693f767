// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is a single bookmark. CategoryID is nil when the owning category
// was deleted; such items are never visible on the dashboard.
type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name" validate:"max=200"`
	URL         string     `json:"url" validate:"max=2048"`
	Description string     `json:"description" validate:"max=1000"`
	Icon        string     `json:"icon" validate:"max=2048"`
	CategoryID  *int64     `json:"categoryId"`
	Pinned      bool       `json:"pinned"`
	Level       int        `json:"level" validate:"min=0,max=3"`
	Tags        []string   `json:"tags" validate:"max=50,dive,max=64"`
	ClickCount  int64      `json:"clickCount" validate:"min=0"`
	LastVisited *time.Time `json:"lastVisited"`
	SortOrder   int        `json:"sortOrder"`
}

// InCategory reports whether the item belongs to the given category.
func (i *Item) InCategory(id int64) bool {
	return i.CategoryID != nil && *i.CategoryID == id
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	if i.CategoryID != nil {
		id := *i.CategoryID
		i.CategoryID = &id
	}
	if i.LastVisited != nil {
		t := *i.LastVisited
		i.LastVisited = &t
	}
	i.Tags = append([]string{}, i.Tags...)
	return i
}

// UnmarshalJSON decodes loosely typed item payloads.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          LooseInt        `json:"id"`
		Name        string          `json:"name"`
		URL         string          `json:"url"`
		Description string          `json:"description"`
		Icon        string          `json:"icon"`
		CategoryID  json.RawMessage `json:"categoryId"`
		Pinned      LooseBool       `json:"pinned"`
		Level       *LooseInt       `json:"level"`
		MinLevel    *LooseInt       `json:"minLevel"`
		Tags        json.RawMessage `json:"tags"`
		ClickCount  LooseInt        `json:"clickCount"`
		LastVisited json.RawMessage `json:"lastVisited"`
		SortOrder   LooseInt        `json:"sortOrder"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}

	categoryID, err := optionalInt(raw.CategoryID)
	if err != nil {
		return fmt.Errorf("decode item categoryId: %w", err)
	}
	tags, err := looseTags(raw.Tags)
	if err != nil {
		return fmt.Errorf("decode item tags: %w", err)
	}
	lastVisited, err := optionalTime(raw.LastVisited)
	if err != nil {
		return fmt.Errorf("decode item lastVisited: %w", err)
	}

	*i = Item{
		ID:          int64(raw.ID),
		Name:        raw.Name,
		URL:         raw.URL,
		Description: raw.Description,
		Icon:        raw.Icon,
		CategoryID:  categoryID,
		Pinned:      bool(raw.Pinned),
		Level:       pickLevel(raw.Level, raw.MinLevel),
		Tags:        tags,
		ClickCount:  int64(raw.ClickCount),
		LastVisited: lastVisited,
		SortOrder:   int(raw.SortOrder),
	}
	return nil
}

// ItemInput carries the caller-editable fields of a bookmark.
type ItemInput struct {
	Name        string   `json:"name" validate:"max=200"`
	URL         string   `json:"url" validate:"required,url,max=2048"`
	Description string   `json:"description" validate:"max=1000"`
	Icon        string   `json:"icon" validate:"max=2048"`
	CategoryID  *int64   `json:"categoryId" validate:"required"`
	Pinned      bool     `json:"pinned"`
	Level       int      `json:"level" validate:"min=0,max=3"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=64"`
}

// UnmarshalJSON decodes through Item so the same coercions apply.
func (in *ItemInput) UnmarshalJSON(data []byte) error {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return err
	}
	*in = ItemInput{
		Name:        it.Name,
		URL:         it.URL,
		Description: it.Description,
		Icon:        it.Icon,
		CategoryID:  it.CategoryID,
		Pinned:      it.Pinned,
		Level:       it.Level,
		Tags:        it.Tags,
	}
	return nil
}

// SearchResult is an item annotated with the name of its category.
type SearchResult struct {
	Item
	CategoryName string `json:"categoryName"`
}

// UncategorizedName labels search results whose category no longer exists.
const UncategorizedName = "Uncategorized"
