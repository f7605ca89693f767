// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
)

// Category is a named group of bookmark items. Level is the minimum
// viewer level required to see the category and everything in it.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"max=100"`
	Icon      string `json:"icon" validate:"max=2048"`
	Level     int    `json:"level" validate:"min=0,max=3"`
	SortOrder int    `json:"sortOrder"`
}

// UnmarshalJSON decodes loosely typed category payloads. Numeric fields
// accept strings and the "minLevel" spelling used by the add dialogs.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        LooseInt  `json:"id"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Level     *LooseInt `json:"level"`
		MinLevel  *LooseInt `json:"minLevel"`
		SortOrder LooseInt  `json:"sortOrder"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode category: %w", err)
	}
	*c = Category{
		ID:        int64(raw.ID),
		Name:      raw.Name,
		Icon:      raw.Icon,
		Level:     pickLevel(raw.Level, raw.MinLevel),
		SortOrder: int(raw.SortOrder),
	}
	return nil
}

// CategoryInput carries the caller-editable fields of a category.
// The id and sort order are assigned by the store.
type CategoryInput struct {
	Name  string `json:"name" validate:"max=100"`
	Icon  string `json:"icon" validate:"max=2048"`
	Level int    `json:"level" validate:"min=0,max=3"`
}

// UnmarshalJSON decodes through Category so the same coercions apply.
func (in *CategoryInput) UnmarshalJSON(data []byte) error {
	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*in = CategoryInput{Name: c.Name, Icon: c.Icon, Level: c.Level}
	return nil
}

func pickLevel(level, minLevel *LooseInt) int {
	switch {
	case level != nil:
		return int(*level)
	case minLevel != nil:
		return int(*minLevel)
	}
	return 0
}
