// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// LooseInt decodes integers from JSON numbers, numeric strings, booleans
// and null. Bookmark payloads written by older clients and the legacy
// flat files mix all of these for ids and levels.
type LooseInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	v, ok, err := parseLooseInt(data)
	if err != nil {
		return err
	}
	if !ok {
		*n = 0
		return nil
	}
	*n = LooseInt(v)
	return nil
}

// LooseBool decodes booleans from JSON booleans, 0/1 numbers and strings.
type LooseBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *LooseBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	switch s {
	case "true", "1", "yes", "on":
		*b = true
	case "false", "0", "", "null", "no", "off":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

// parseLooseInt returns ok=false for null, empty strings and absent values.
func parseLooseInt(data []byte) (int64, bool, error) {
	s := string(bytes.TrimSpace(data))
	switch s {
	case "", "null", `""`:
		return 0, false, nil
	case "true":
		return 1, true, nil
	case "false":
		return 0, true, nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return 0, false, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("invalid integer %s", data)
	}
	return int64(f), true, nil
}

// optionalInt decodes a nullable reference such as categoryId.
func optionalInt(raw json.RawMessage) (*int64, error) {
	v, ok, err := parseLooseInt(raw)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

var looseTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// optionalTime decodes timestamps written as RFC 3339 strings, SQLite
// datetime strings or Unix milliseconds.
func optionalTime(raw json.RawMessage) (*time.Time, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" || s == `""` {
		return nil, nil
	}
	if s[0] != '"' {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %s", raw)
		}
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, err
	}
	for _, layout := range looseTimeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", str)
}

// looseTags accepts a JSON array, a JSON-encoded array inside a string,
// or a comma separated string.
func looseTags(raw json.RawMessage) ([]string, error) {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 || string(s) == "null" {
		return []string{}, nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return nil, err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return []string{}, nil
		}
		if strings.HasPrefix(str, "[") {
			return looseTags(json.RawMessage(str))
		}
		tags := []string{}
		for _, t := range strings.Split(str, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return tags, nil
	}
	var tags []string
	if err := json.Unmarshal(s, &tags); err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// LooseTime decodes the timestamp spellings accepted by optionalTime.
// The zero value means the timestamp was absent.
type LooseTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *LooseTime) UnmarshalJSON(data []byte) error {
	v, err := optionalTime(data)
	if err != nil {
		return err
	}
	t.Time = time.Time{}
	if v != nil {
		t.Time = *v
	}
	return nil
}
