// Package session provides database-backed HTTP session management.
// Sessions are identified by a secure cookie and persisted through the
// session store, which handles expiry and reuse for the same device.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/store"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "nav_session"

	// DefaultTTL is how long a session lives before it expires.
	DefaultTTL = 7 * 24 * time.Hour
)

// Data holds the identity attached to an authenticated request. The level
// is read from the account on every lookup so demotions apply at once.
type Data struct {
	SessionID string    `json:"sessionId"`
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin returns true if the session belongs to an administrator.
func (d *Data) IsAdmin() bool {
	return d != nil && d.Level >= models.LevelAdmin
}

// Manager manages session lifecycle and cookies.
type Manager struct {
	sessions *store.SessionStore
	users    *store.UserStore
	ttl      time.Duration
	secure   bool
}

// NewManager creates a session manager. secure marks cookies HTTPS-only.
func NewManager(sessions *store.SessionStore, users *store.UserStore, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{sessions: sessions, users: users, ttl: ttl, secure: secure}
}

// Create starts (or reuses) a session for user and sets the session cookie
// on the response.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, user *models.User, ip, userAgent string) (*Data, error) {
	sess, err := m.sessions.Create(ctx, user.Username, ip, userAgent, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
	})

	return &Data{
		SessionID: sess.ID,
		Username:  user.Username,
		Level:     user.Level,
		CreatedAt: sess.CreatedAt,
	}, nil
}

// Get resolves the session cookie of the request. Returns nil if there is
// no valid session or its account no longer exists.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	sess, err := m.sessions.Validate(ctx, cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	user, err := m.users.FindByUsername(ctx, sess.Username)
	if err != nil {
		return nil, fmt.Errorf("session user: %w", err)
	}
	if user == nil {
		_ = m.sessions.Revoke(ctx, sess.ID)
		return nil, nil
	}

	return &Data{
		SessionID: sess.ID,
		Username:  user.Username,
		Level:     user.Level,
		CreatedAt: sess.CreatedAt,
	}, nil
}

// Destroy revokes the session of the request and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	if err := m.sessions.Revoke(ctx, cookie.Value); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		MaxAge:   -1,
	})

	return nil
}
