package handlers

import (
	"log/slog"
	"net/http"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/session"
	"github.com/starwishes/Nav/internal/store"
)

// Audit actions written for account events.
const (
	ActionLogin          = "LOGIN"
	ActionLoginFailed    = "LOGIN_FAILED"
	ActionLogout         = "LOGOUT"
	ActionRegister       = "REGISTER"
	ActionProfileUpdate  = "PROFILE_UPDATE"
	ActionRevokeSessions = "SESSIONS_REVOKE"
)

// Auth groups the account and session handlers.
type Auth struct {
	sessions *session.Manager
	store    *store.SessionStore
	users    *store.UserStore
	settings *store.SettingStore
	audit    *store.AuditStore
}

// NewAuth creates the account handler group.
func NewAuth(sessions *session.Manager, sessionStore *store.SessionStore, users *store.UserStore,
	settings *store.SettingStore, audit *store.AuditStore) *Auth {
	return &Auth{
		sessions: sessions,
		store:    sessionStore,
		users:    users,
		settings: settings,
		audit:    audit,
	}
}

type credentials struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// Login checks the credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	ip := middleware.ClientIP(r)

	user, err := a.users.FindByUsername(ctx, req.Username)
	if err != nil {
		fail(w, r, "login lookup", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		a.audit.Log(ctx, req.Username, ActionLoginFailed, r.UserAgent(), ip)
		slog.Warn("login failed", "username", req.Username, "ip", ip)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	sess, err := a.sessions.Create(ctx, w, user, ip, r.UserAgent())
	if err != nil {
		fail(w, r, "create session", err)
		return
	}
	if err := a.users.UpdateLastLogin(ctx, user.Username, time.Now()); err != nil {
		slog.Warn("failed to record last login", "username", user.Username, "error", err)
	}
	a.audit.Log(ctx, user.Username, ActionLogin, r.UserAgent(), ip)
	slog.Info("user logged in", "username", user.Username)

	writeOK(w, map[string]any{
		"user":      user,
		"sessionId": sess.SessionID,
	})
}

// Logout ends the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		fail(w, r, "logout", err)
		return
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		a.audit.Log(r.Context(), sess.Username, ActionLogout, "", middleware.ClientIP(r))
	}
	writeOK(w, nil)
}

// Register creates an account when registration is enabled.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := a.settings.Load(ctx)
	if err != nil {
		fail(w, r, "load settings", err)
		return
	}
	if !settings.RegistrationEnabled {
		writeError(w, http.StatusForbidden, "registration is disabled")
		return
	}

	var req credentials
	if !decode(w, r, &req) {
		return
	}
	if !strongPassword(req.Password) {
		writeFieldError(w, weakPassword())
		return
	}

	user, err := a.users.Create(ctx, req.Username, req.Password, settings.DefaultUserLevel)
	if err != nil {
		fail(w, r, "register", err)
		return
	}
	a.audit.Log(ctx, user.Username, ActionRegister, "", middleware.ClientIP(r))
	slog.Info("user registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": user})
}

// Profile returns the caller's account.
func (a *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.FindByUsername(r.Context(), sess.Username)
	if err != nil {
		fail(w, r, "profile", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileUpdate struct {
	Username *string `json:"username" validate:"omitempty,alphanum,min=3,max=30"`
	Password *string `json:"password" validate:"omitempty,max=128"`
}

// UpdateProfile renames the caller or changes their password. The level
// can only be changed by an administrator.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdate
	if !decode(w, r, &req) {
		return
	}
	if req.Password != nil && !strongPassword(*req.Password) {
		writeFieldError(w, weakPassword())
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.users.Update(r.Context(), sess.Username, models.UserUpdate{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		fail(w, r, "update profile", err)
		return
	}
	details := ""
	if user.Username != sess.Username {
		details = "renamed from " + sess.Username
	}
	a.audit.Log(r.Context(), user.Username, ActionProfileUpdate, details, middleware.ClientIP(r))
	writeOK(w, map[string]any{"user": user})
}

type sessionResponse struct {
	models.Session
	IsCurrent bool `json:"isCurrent"`
}

// Sessions lists the caller's active sessions.
func (a *Auth) Sessions(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	list, err := a.store.ListByUsername(r.Context(), sess.Username)
	if err != nil {
		fail(w, r, "list sessions", err)
		return
	}
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionResponse{Session: s, IsCurrent: s.ID == sess.SessionID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// RevokeOthers signs the caller out everywhere except here.
func (a *Auth) RevokeOthers(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	n, err := a.store.RevokeOthers(r.Context(), sess.Username, sess.SessionID)
	if err != nil {
		fail(w, r, "revoke sessions", err)
		return
	}
	a.audit.Log(r.Context(), sess.Username, ActionRevokeSessions, "", middleware.ClientIP(r))
	writeOK(w, map[string]any{"revokedCount": n})
}

// RevokeSession ends one of the caller's own sessions.
func (a *Auth) RevokeSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if err := a.store.RevokeForUser(r.Context(), sess.Username, chi.URLParam(r, "id")); err != nil {
		fail(w, r, "revoke session", err)
		return
	}
	writeOK(w, nil)
}

// strongPassword requires at least 8 characters mixing upper and lower
// case letters, digits and symbols.
func strongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func weakPassword() *bookmark.ValidationError {
	return &bookmark.ValidationError{
		Field:   "password",
		Message: "must be at least 8 characters with upper and lower case letters, a digit and a symbol",
	}
}
