// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/store"
)

// Audit actions written for administration.
const (
	ActionSettingsUpdate = "SETTINGS_UPDATE"
	ActionUserCreate     = "USER_CREATE"
	ActionUserUpdate     = "USER_UPDATE"
	ActionUserDelete     = "USER_DELETE"
)

// DefaultAuditLimit is the audit page size when none is requested.
const DefaultAuditLimit = 50

// Admin groups the administrator handlers.
type Admin struct {
	bookmarks *bookmark.Service
	users     *store.UserStore
	settings  *store.SettingStore
	audit     *store.AuditStore
	stats     *store.StatsStore
}

// NewAdmin creates the administrator handler group.
func NewAdmin(bookmarks *bookmark.Service, users *store.UserStore, settings *store.SettingStore,
	audit *store.AuditStore, stats *store.StatsStore) *Admin {
	return &Admin{
		bookmarks: bookmarks,
		users:     users,
		settings:  settings,
		audit:     audit,
		stats:     stats,
	}
}

// --- Recycle bin ---

// Trash lists the recycle bin.
func (a *Admin) Trash(w http.ResponseWriter, r *http.Request) {
	entries, err := a.bookmarks.Trash(r.Context())
	if err != nil {
		fail(w, r, "list trash", err)
		return
	}
	if entries == nil {
		entries = []models.RecycleEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Restore puts a recycled item back.
func (a *Admin) Restore(w http.ResponseWriter, r *http.Request) {
	it, err := a.bookmarks.Restore(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, "restore item", err)
		return
	}
	writeOK(w, map[string]any{"item": it})
}

// PurgeTrashEntry deletes one recycle entry for good.
func (a *Admin) PurgeTrashEntry(w http.ResponseWriter, r *http.Request) {
	if err := a.bookmarks.PermanentDelete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, "purge trash entry", err)
		return
	}
	writeOK(w, nil)
}

// EmptyTrash deletes every recycle entry.
func (a *Admin) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	n, err := a.bookmarks.EmptyTrash(r.Context(), actor(r))
	if err != nil {
		fail(w, r, "empty trash", err)
		return
	}
	writeOK(w, map[string]any{"deleted": n})
}

// --- Settings ---

// Settings returns every stored setting.
func (a *Admin) Settings(w http.ResponseWriter, r *http.Request) {
	s, err := a.settings.Load(r.Context())
	if err != nil {
		fail(w, r, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings merges the posted keys over the stored settings.
func (a *Admin) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update map[string]json.RawMessage
	if !readJSON(w, r, &update) {
		return
	}
	ctx := r.Context()
	current, err := a.settings.Load(ctx)
	if err != nil {
		fail(w, r, "load settings", err)
		return
	}
	merged, err := current.Merge(update)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	encoded, err := merged.Encode()
	if err != nil {
		fail(w, r, "encode settings", err)
		return
	}
	if err := a.settings.SetMany(ctx, encoded); err != nil {
		fail(w, r, "save settings", err)
		return
	}
	a.audit.Log(ctx, actor(r).Username, ActionSettingsUpdate, "", middleware.ClientIP(r))
	slog.Info("settings updated", "keys", len(update))
	writeOK(w, map[string]any{"settings": merged})
}

// --- Users ---

// Users lists every account.
func (a *Admin) Users(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		fail(w, r, "list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type newUser struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Level    int    `json:"level" validate:"min=0,max=3"`
}

// CreateUser adds an account with the given level.
func (a *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req newUser
	if !decode(w, r, &req) {
		return
	}
	user, err := a.users.Create(r.Context(), req.Username, req.Password, req.Level)
	if err != nil {
		fail(w, r, "create user", err)
		return
	}
	a.audit.Log(r.Context(), actor(r).Username, ActionUserCreate, user.Username, middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser renames an account or changes its password or level.
func (a *Admin) UpdateUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "username")
	var req models.UserUpdate
	if !decode(w, r, &req) {
		return
	}
	if self := actor(r).Username; name == self && req.Level != nil && *req.Level < models.LevelAdmin {
		writeError(w, http.StatusBadRequest, "cannot lower your own level")
		return
	}
	user, err := a.users.Update(r.Context(), name, req)
	if err != nil {
		fail(w, r, "update user", err)
		return
	}
	a.audit.Log(r.Context(), actor(r).Username, ActionUserUpdate, name, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes an account and its sessions.
func (a *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "username")
	if name == actor(r).Username {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := a.users.Delete(r.Context(), name); err != nil {
		fail(w, r, "delete user", err)
		return
	}
	a.audit.Log(r.Context(), actor(r).Username, ActionUserDelete, name, middleware.ClientIP(r))
	writeOK(w, nil)
}

// --- Audit & stats ---

// Audit returns one page of the audit log, newest first.
func (a *Admin) Audit(w http.ResponseWriter, r *http.Request) {
	page, err := a.audit.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", DefaultAuditLimit))
	if err != nil {
		fail(w, r, "list audit", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Stats returns the visit summary.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	sum, err := a.stats.Summary(r.Context(), time.Now())
	if err != nil {
		fail(w, r, "stats summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
