package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

const sessionColumns = `session_id, username, ip, user_agent, created_at, last_active_at, expires_at`

// SessionStore persists login sessions.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(row scanner) (*models.Session, error) {
	sess := &models.Session{}
	if err := row.Scan(&sess.ID, &sess.Username, &sess.IP, &sess.UserAgent,
		&sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt); err != nil {
		return nil, err
	}
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.LastActiveAt = sess.LastActiveAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return sess, nil
}

// Create returns a session for the login. An active session with the same
// username, IP and user agent is reused instead of creating a new one.
// Expired sessions are removed on the way.
func (s *SessionStore) Create(ctx context.Context, username, ip, userAgent string, ttl time.Duration) (*models.Session, error) {
	t := now()
	if err := s.deleteExpired(ctx, t); err != nil {
		slog.Warn("failed to clean expired sessions", "error", err)
	}

	existing, err := scanSession(s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE username = $1 AND ip = $2 AND user_agent = $3 AND expires_at > $4
		ORDER BY last_active_at DESC LIMIT 1
	`, username, ip, userAgent, t))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("find reusable session: %w", err)
	}
	if existing != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE sessions SET last_active_at = $1 WHERE session_id = $2`, t, existing.ID); err != nil {
			return nil, fmt.Errorf("touch session: %w", err)
		}
		existing.LastActiveAt = t
		return existing, nil
	}

	id, err := generateID()
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		ID:           id,
		Username:     username,
		IP:           ip,
		UserAgent:    userAgent,
		CreatedAt:    t,
		LastActiveAt: t,
		ExpiresAt:    dbTime(t.Add(ttl)),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sess.ID, sess.Username, sess.IP, sess.UserAgent, sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Validate returns the active session with the given id and refreshes its
// activity time. Returns nil if the session is unknown or expired.
func (s *SessionStore) Validate(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE session_id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	t := now()
	if !sess.ExpiresAt.After(t) {
		if err := s.Revoke(ctx, id); err != nil {
			slog.Warn("failed to remove expired session", "error", err)
		}
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = $1 WHERE session_id = $2`, t, id); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	sess.LastActiveAt = t
	return sess, nil
}

// Revoke deletes a session. Unknown ids are ignored.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeForUser deletes one of the user's own sessions. Returns
// ErrNotFound if the session does not belong to the user.
func (s *SessionStore) RevokeForUser(ctx context.Context, username, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = $1 AND username = $2`, id, username)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeOthers deletes every session of the user except keepID and
// returns how many were removed.
func (s *SessionStore) RevokeOthers(ctx context.Context, username, keepID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE username = $1 AND session_id <> $2`, username, keepID)
	if err != nil {
		return 0, fmt.Errorf("revoke other sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListByUsername returns the user's active sessions, most recent first.
func (s *SessionStore) ListByUsername(ctx context.Context, username string) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE username = $1 AND expires_at > $2
		ORDER BY last_active_at DESC
	`, username, now())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) deleteExpired(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, at)
	return err
}

// generateID creates a cryptographically random session ID.
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
