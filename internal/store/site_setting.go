// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starwishes/Nav/internal/models"
)

// SettingStore manages site settings. Every value is stored JSON encoded.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

const upsertSetting = `
	INSERT INTO settings (key, value)
	VALUES ($1, $2)
	ON CONFLICT (key)
	DO UPDATE SET value = EXCLUDED.value`

// All returns every stored setting as raw JSON values.
func (s *SettingStore) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		if !json.Valid([]byte(v)) {
			// Older rows may hold a bare string.
			b, _ := json.Marshal(v)
			v = string(b)
		}
		settings[k] = json.RawMessage(v)
	}
	return settings, rows.Err()
}

// Load returns the typed settings with defaults for missing keys.
// Stored values that cannot be decoded are logged and replaced by their
// default.
func (s *SettingStore) Load(ctx context.Context) (models.Settings, error) {
	raw, err := s.All(ctx)
	if err != nil {
		return models.DefaultSettings(), err
	}
	settings, err := models.DecodeSettings(raw)
	if err != nil {
		slog.Warn("ignoring invalid stored settings", "error", err)
	}
	return settings, nil
}

// Get returns a single raw setting. ok is false if the key is absent.
func (s *SettingStore) Get(ctx context.Context, key models.SettingKey) (json.RawMessage, bool, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, string(key)).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return json.RawMessage(val), true, nil
}

// Set upserts a single setting. The value is JSON encoded.
func (s *SettingStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSetting, key, string(b)); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// SetMany upserts multiple raw settings in a single transaction.
func (s *SettingStore) SetMany(ctx context.Context, settings map[string]json.RawMessage) error {
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertSetting)
		if err != nil {
			return fmt.Errorf("prepare setting upsert: %w", err)
		}
		defer stmt.Close()

		for k, v := range settings {
			if !json.Valid(v) {
				return fmt.Errorf("setting %s: invalid JSON value", k)
			}
			if _, err := stmt.ExecContext(ctx, k, string(v)); err != nil {
				return fmt.Errorf("set setting %s: %w", k, err)
			}
		}
		return nil
	})
}

// Save stores every typed and extra setting.
func (s *SettingStore) Save(ctx context.Context, settings models.Settings) error {
	encoded, err := settings.Encode()
	if err != nil {
		return err
	}
	return s.SetMany(ctx, encoded)
}

// Count returns the number of stored settings.
func (s *SettingStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count settings: %w", err)
	}
	return n, nil
}
