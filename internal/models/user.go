// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// Viewer levels. A category or item is visible to a viewer whose level is
// at least the record's level. Anonymous visitors are guests.
const (
	LevelGuest  = 0
	LevelUser   = 1
	LevelMember = 2
	LevelAdmin  = 3
)

// User is a dashboard account.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	Level        int        `json:"level"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}

// IsAdmin returns true if the user may edit the bookmark tree and
// manage accounts.
func (u *User) IsAdmin() bool {
	return u.Level >= LevelAdmin
}

// UserUpdate holds the optional changes an admin can apply to an account.
// Nil fields are left unchanged.
type UserUpdate struct {
	Username *string `json:"username" validate:"omitempty,alphanum,min=3,max=30"`
	Password *string `json:"password" validate:"omitempty,min=6,max=128"`
	Level    *int    `json:"level" validate:"omitempty,min=0,max=3"`
}

// Session is a persisted login session.
type Session struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"userAgent"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuditEntry records an administrative or security relevant action.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditPage is one page of the audit log.
type AuditPage struct {
	Logs  []AuditEntry `json:"logs"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
