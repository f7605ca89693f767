package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starwishes/Nav/internal/models"
)

const userColumns = `username, password, level, created_at, last_login`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	var lastLogin sql.NullTime
	if err := row.Scan(&u.Username, &u.PasswordHash, &u.Level, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastLogin = nullTime(lastLogin)
	return u, nil
}

// FindByUsername retrieves a user. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Count returns the number of accounts.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts a new user with a bcrypt-hashed password. Returns
// ErrConflict if the username is taken.
func (s *UserStore) Create(ctx context.Context, username, password string, level int) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, level, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
		RETURNING `+userColumns,
		username, string(hash), level, now()))
	if err == sql.ErrNoRows {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Update applies the non-nil fields of upd. Renaming moves the user's
// sessions along with the account. Returns ErrNotFound for an unknown
// user and ErrConflict if the new name is taken.
func (s *UserStore) Update(ctx context.Context, username string, upd models.UserUpdate) (*models.User, error) {
	var out *models.User
	err := runTx(ctx, s.db, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}

		newName := u.Username
		if upd.Username != nil && *upd.Username != u.Username {
			newName = *upd.Username
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM users WHERE username = $1`, newName).Scan(&n); err != nil {
				return fmt.Errorf("check username: %w", err)
			}
			if n > 0 {
				return ErrConflict
			}
		}
		hash := u.PasswordHash
		if upd.Password != nil {
			b, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			hash = string(b)
		}
		level := u.Level
		if upd.Level != nil {
			level = *upd.Level
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET username = $1, password = $2, level = $3 WHERE username = $4
		`, newName, hash, level, username); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if newName != username {
			if _, err := tx.ExecContext(ctx,
				`UPDATE sessions SET username = $1 WHERE username = $2`, newName, username); err != nil {
				return fmt.Errorf("rename sessions: %w", err)
			}
		}

		out, err = scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1`, newName))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user and their sessions. Returns ErrNotFound for an
// unknown user.
func (s *UserStore) Delete(ctx context.Context, username string) error {
	return runTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE username = $1`, username); err != nil {
			return fmt.Errorf("delete user sessions: %w", err)
		}
		return nil
	})
}

// UpdateLastLogin records a successful login.
func (s *UserStore) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = $1 WHERE username = $2`, dbTime(at), username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// ImportedUser is an account carried over from the legacy files with an
// already hashed password.
type ImportedUser struct {
	Username     string
	PasswordHash string
	Level        int
	CreatedAt    time.Time
}

// ImportMany inserts pre-hashed accounts in one transaction, skipping
// usernames that already exist. Returns the number inserted.
func (s *UserStore) ImportMany(ctx context.Context, users []ImportedUser) (int, error) {
	inserted := 0
	err := runTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, u := range users {
			created := u.CreatedAt
			if created.IsZero() {
				created = time.Now()
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO users (username, password, level, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (username) DO NOTHING
			`, u.Username, u.PasswordHash, u.Level, dbTime(created))
			if err != nil {
				return fmt.Errorf("import user %s: %w", u.Username, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
