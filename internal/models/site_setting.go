// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// SettingKey names a site setting. Values are stored as JSON.
type SettingKey string

const (
	SettingRegistrationEnabled SettingKey = "registrationEnabled"
	SettingDefaultUserLevel    SettingKey = "defaultUserLevel"
	SettingBackgroundURL       SettingKey = "backgroundUrl"
	SettingTimezone            SettingKey = "timezone"
	SettingHomeURL             SettingKey = "homeUrl"
	SettingFooterHTML          SettingKey = "footerHtml"
	SettingSiteName            SettingKey = "siteName"
)

// Settings is the typed view of the settings table. Keys this version
// does not know about are preserved untouched in Extra.
type Settings struct {
	RegistrationEnabled bool
	DefaultUserLevel    int
	BackgroundURL       string
	Timezone            string
	HomeURL             string
	FooterHTML          string
	SiteName            string

	Extra map[string]json.RawMessage
}

// DefaultSettings returns the values used for keys that were never stored.
func DefaultSettings() Settings {
	return Settings{
		RegistrationEnabled: false,
		DefaultUserLevel:    LevelUser,
		BackgroundURL:       "",
	}
}

type settingField struct {
	key    SettingKey
	decode func(s *Settings, raw json.RawMessage) error
	encode func(s Settings) any
}

func stringField(key SettingKey, ptr func(*Settings) *string) settingField {
	return settingField{
		key: key,
		decode: func(s *Settings, raw json.RawMessage) error {
			return json.Unmarshal(raw, ptr(s))
		},
		encode: func(s Settings) any { return *ptr(&s) },
	}
}

var settingFields = []settingField{
	{
		key: SettingRegistrationEnabled,
		decode: func(s *Settings, raw json.RawMessage) error {
			var b LooseBool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			s.RegistrationEnabled = bool(b)
			return nil
		},
		encode: func(s Settings) any { return s.RegistrationEnabled },
	},
	{
		key: SettingDefaultUserLevel,
		decode: func(s *Settings, raw json.RawMessage) error {
			var n LooseInt
			if err := json.Unmarshal(raw, &n); err != nil {
				return err
			}
			if n < LevelGuest || n > LevelAdmin {
				return fmt.Errorf("level %d out of range", n)
			}
			s.DefaultUserLevel = int(n)
			return nil
		},
		encode: func(s Settings) any { return s.DefaultUserLevel },
	},
	stringField(SettingBackgroundURL, func(s *Settings) *string { return &s.BackgroundURL }),
	stringField(SettingTimezone, func(s *Settings) *string { return &s.Timezone }),
	stringField(SettingHomeURL, func(s *Settings) *string { return &s.HomeURL }),
	stringField(SettingFooterHTML, func(s *Settings) *string { return &s.FooterHTML }),
	stringField(SettingSiteName, func(s *Settings) *string { return &s.SiteName }),
}

// DecodeSettings builds Settings from raw stored values, starting from the
// defaults. A known key holding an undecodable value keeps its default and
// is reported in the returned error; every other key is still applied.
func DecodeSettings(raw map[string]json.RawMessage) (Settings, error) {
	s := DefaultSettings()
	err := s.apply(raw)
	return s, err
}

// Merge returns a copy of s with the given raw values applied on top.
func (s Settings) Merge(update map[string]json.RawMessage) (Settings, error) {
	out := s
	out.Extra = maps.Clone(s.Extra)
	if err := out.apply(update); err != nil {
		return s, err
	}
	return out, nil
}

func (s *Settings) apply(raw map[string]json.RawMessage) error {
	known := make(map[string]settingField, len(settingFields))
	for _, f := range settingFields {
		known[string(f.key)] = f
	}

	var errs []error
	for k, v := range raw {
		f, ok := known[k]
		if !ok {
			if s.Extra == nil {
				s.Extra = make(map[string]json.RawMessage)
			}
			s.Extra[k] = v
			continue
		}
		if err := f.decode(s, v); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Encode returns every setting, known and extra, JSON encoded for storage.
func (s Settings) Encode() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(settingFields)+len(s.Extra))
	for k, v := range s.Extra {
		out[k] = v
	}
	for _, f := range settingFields {
		b, err := json.Marshal(f.encode(s))
		if err != nil {
			return nil, fmt.Errorf("encode setting %s: %w", f.key, err)
		}
		out[string(f.key)] = b
	}
	return out, nil
}

// MarshalJSON renders settings as a flat object keyed by setting name.
func (s Settings) MarshalJSON() ([]byte, error) {
	m, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// PublicSettings is the subset of settings shown to anonymous visitors.
type PublicSettings struct {
	RegistrationEnabled bool   `json:"registrationEnabled"`
	BackgroundURL       string `json:"backgroundUrl"`
	Timezone            string `json:"timezone"`
	HomeURL             string `json:"homeUrl"`
	FooterHTML          string `json:"footerHtml"`
	SiteName            string `json:"siteName"`
}

// Public returns the anonymous view of the settings.
func (s Settings) Public() PublicSettings {
	return PublicSettings{
		RegistrationEnabled: s.RegistrationEnabled,
		BackgroundURL:       s.BackgroundURL,
		Timezone:            s.Timezone,
		HomeURL:             s.HomeURL,
		FooterHTML:          s.FooterHTML,
		SiteName:            s.SiteName,
	}
}
