// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// audit.go records administrative and security events in the database.
// Each entry captures who did what, from where, and when. Writing an entry
// is best-effort: a failure is logged and never fails the caller.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/starwishes/Nav/internal/models"
)

// AuditRetention is the number of newest entries kept in the audit log.
const AuditRetention = 500

// AuditStore handles audit log operations.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Log records an audit event and trims the log to AuditRetention entries.
func (s *AuditStore) Log(ctx context.Context, username, action, details, ip string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (username, action, details, ip, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, username, action, details, ip, now())
	if err != nil {
		// Log but don't fail: auditing is best-effort.
		slog.Warn("failed to write audit log",
			"username", username,
			"action", action,
			"error", err,
		)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM audit_logs
		WHERE id NOT IN (SELECT id FROM audit_logs ORDER BY id DESC LIMIT $1)
	`, AuditRetention)
	if err != nil {
		slog.Warn("failed to trim audit log", "error", err)
	}
}

// List returns one page of the audit log, newest first. Pages start at 1.
func (s *AuditStore) List(ctx context.Context, page, limit int) (*models.AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit log: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, action, details, ip, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	logs, err := scanAuditEntries(rows)
	if err != nil {
		return nil, err
	}
	return &models.AuditPage{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}

// ListByUsername returns the newest entries written for one user.
func (s *AuditStore) ListByUsername(ctx context.Context, username string, limit int) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, action, details, ip, created_at
		FROM audit_logs
		WHERE username = $1
		ORDER BY id DESC
		LIMIT $2
	`, username, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows *sql.Rows) ([]models.AuditEntry, error) {
	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Details, &e.IP, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
