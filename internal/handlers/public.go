package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/favicon"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/store"
	"github.com/starwishes/Nav/internal/view"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Public groups the handlers reachable without an account.
type Public struct {
	bookmarks *bookmark.Service
	settings  *store.SettingStore
	icons     *favicon.Fetcher
	started   time.Time
}

// NewPublic creates the public handler group.
func NewPublic(bookmarks *bookmark.Service, settings *store.SettingStore, icons *favicon.Fetcher) *Public {
	return &Public{
		bookmarks: bookmarks,
		settings:  settings,
		icons:     icons,
		started:   time.Now(),
	}
}

// Health reports liveness, version and uptime.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(p.started).Seconds(),
		"cached":    p.bookmarks.Cache().Cached(),
	})
}

// Settings returns the settings shown to anonymous visitors.
func (p *Public) Settings(w http.ResponseWriter, r *http.Request) {
	s, err := p.settings.Load(r.Context())
	if err != nil {
		fail(w, r, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Public())
}

// dataResponse is the dashboard payload for one viewer.
type dataResponse struct {
	Categories []models.Category `json:"categories"`
	Items      []models.Item     `json:"items"`
	Sections   []view.Section    `json:"sections"`
	Tags       []string          `json:"tags"`
	Level      int               `json:"level"`
}

// Data returns the part of the bookmark tree visible to the caller,
// optionally narrowed to items carrying any of the ?tag= values.
func (p *Public) Data(w http.ResponseWriter, r *http.Request) {
	level := middleware.Level(r.Context())
	v, err := p.bookmarks.GetView(r.Context(), level)
	if err != nil {
		fail(w, r, "get view", err)
		return
	}
	tags := v.Tags()
	if want := r.URL.Query()["tag"]; len(want) > 0 {
		v = v.WithTags(want...)
	}
	writeJSON(w, http.StatusOK, dataResponse{
		Categories: v.Categories,
		Items:      v.Items,
		Sections:   v.Sections(),
		Tags:       tags,
		Level:      level,
	})
}

// Click counts a visit of an item.
func (p *Public) Click(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	it, err := p.bookmarks.TrackClick(r.Context(), id)
	if err != nil {
		fail(w, r, "track click", err)
		return
	}
	writeOK(w, map[string]any{"clickCount": it.ClickCount})
}

// Favicon proxies the icon of the site in ?url=.
func (p *Public) Favicon(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	icon, err := p.icons.Lookup(r.Context(), target)
	if err != nil {
		if !errors.Is(err, favicon.ErrNotFound) {
			slog.Debug("favicon lookup failed", "url", target, "error", err)
		}
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", icon.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(icon.Data)
}
