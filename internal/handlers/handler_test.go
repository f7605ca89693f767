// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Every test gets its own SQLite database.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pressly/goose/v3"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/database"
	"github.com/starwishes/Nav/internal/favicon"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/session"
	"github.com/starwishes/Nav/internal/store"
)

// testDB opens a fresh SQLite database and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "nav.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB        *sql.DB
	Users     *store.UserStore
	Sessions  *store.SessionStore
	Settings  *store.SettingStore
	Audit     *store.AuditStore
	Stats     *store.StatsStore
	Service   *bookmark.Service
	Manager   *session.Manager
	Public    *Public
	Auth      *Auth
	Bookmarks *Bookmarks
	Admin     *Admin
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	settings := store.NewSettingStore(db)
	audit := store.NewAuditStore(db)
	stats := store.NewStatsStore(db)
	bookmarks := store.NewBookmarkStore(db)
	service := bookmark.NewService(bookmarks, store.NewRecycleStore(bookmarks), audit)
	manager := session.NewManager(sessions, users, 0, false)

	// Favicon sources that never answer keep the tests offline.
	icons := favicon.NewFetcher(nil, nil, []favicon.Source{
		func(string) string { return "http://127.0.0.1:0/" },
	})

	return &testEnv{
		DB:        db,
		Users:     users,
		Sessions:  sessions,
		Settings:  settings,
		Audit:     audit,
		Stats:     stats,
		Service:   service,
		Manager:   manager,
		Public:    NewPublic(service, settings, icons),
		Auth:      NewAuth(manager, sessions, users, settings, audit),
		Bookmarks: NewBookmarks(service, http.DefaultClient),
		Admin:     NewAdmin(service, users, settings, audit, stats),
	}
}

// createUser stores an account with the given level.
func (env *testEnv) createUser(t *testing.T, name, password string, level int) *models.User {
	t.Helper()
	u, err := env.Users.Create(context.Background(), name, password, level)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// seedGraph stores two categories, one of them members only, and three items.
func (env *testEnv) seedGraph(t *testing.T) {
	t.Helper()
	one, two := int64(1), int64(2)
	g := &models.Graph{
		Categories: []models.Category{
			{ID: 1, Name: "Tools", Level: models.LevelGuest},
			{ID: 2, Name: "Private", Level: models.LevelMember},
		},
		Items: []models.Item{
			{ID: 1, Name: "Go", URL: "https://go.dev", CategoryID: &one, Tags: []string{"lang"}},
			{ID: 2, Name: "Chi", URL: "https://go-chi.io", CategoryID: &one, Tags: []string{"web"}},
			{ID: 3, Name: "Secret", URL: "https://secret.example", CategoryID: &two},
		},
	}
	if err := env.Service.ReplaceAll(context.Background(), bookmark.Actor{Username: "seed"}, g); err != nil {
		t.Fatalf("seed graph: %v", err)
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// testSession creates a session.Data for testing.
func testSession(username string, level int) *session.Data {
	return &session.Data{SessionID: "test-session", Username: username, Level: level}
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches a session to the request.
func asUser(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody decodes a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}
