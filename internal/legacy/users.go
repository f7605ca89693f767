package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/starwishes/Nav/internal/models"
	"github.com/starwishes/Nav/internal/store"
)

// legacyAccount is an account record as written by older releases.
type legacyAccount struct {
	Username  string           `json:"username"`
	Password  string           `json:"password"`
	Level     models.LooseInt  `json:"level"`
	CreatedAt models.LooseTime `json:"createdAt"`
}

func (r *Runner) importUsers(ctx context.Context) Result {
	n, err := r.users.Count(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("check users: %w", err)}
	}
	if n > 0 {
		return Result{Skipped: true}
	}

	accountsPath := r.path("accounts.json")
	if b, err := readFile(accountsPath); err == nil {
		accounts, perr := parseAccounts(b)
		if perr == nil {
			return r.storeUsers(ctx, accountsPath, accounts, []string{accountsPath})
		}
		slog.Warn("legacy accounts file invalid", "path", accountsPath, "error", perr)
	} else if !errors.Is(err, errNoSource) {
		slog.Warn("legacy accounts file unreadable", "error", err)
	}

	accounts, files, err := r.readUserDir()
	if err != nil {
		return Result{Err: err}
	}
	if len(accounts) == 0 {
		return Result{Skipped: true}
	}
	return r.storeUsers(ctx, r.path("users"), accounts, files)
}

func (r *Runner) storeUsers(ctx context.Context, source string, accounts []legacyAccount, files []string) Result {
	users := make([]store.ImportedUser, 0, len(accounts))
	for _, a := range accounts {
		if a.Username == "" || a.Password == "" {
			continue
		}
		hash, err := ensureHash(a.Password)
		if err != nil {
			return Result{Source: source, Err: fmt.Errorf("hash password of %s: %w", a.Username, err)}
		}
		users = append(users, store.ImportedUser{
			Username:     a.Username,
			PasswordHash: hash,
			Level:        int(a.Level),
			CreatedAt:    a.CreatedAt.Time,
		})
	}

	n, err := r.users.ImportMany(ctx, users)
	if err != nil {
		return Result{Source: source, Err: fmt.Errorf("import users: %w", err)}
	}
	for _, f := range files {
		archive(f)
	}
	return Result{Source: source, Imported: n}
}

// parseAccounts accepts an array of accounts or an object keyed by
// username.
func parseAccounts(b []byte) ([]legacyAccount, error) {
	var list []legacyAccount
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var byName map[string]legacyAccount
	if err := json.Unmarshal(b, &byName); err != nil {
		return nil, err
	}
	for name, a := range byName {
		if a.Username == "" {
			a.Username = name
		}
		list = append(list, a)
	}
	return list, nil
}

// readUserDir reads users/<name>.json files. Files without a password
// hold per-user bookmark data rather than an account and are left alone.
func (r *Runner) readUserDir() ([]legacyAccount, []string, error) {
	dir := r.path("users")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read users dir: %w", err)
	}

	var (
		accounts []legacyAccount
		files    []string
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("legacy user file unreadable", "path", path, "error", err)
			continue
		}
		var a legacyAccount
		if err := json.Unmarshal(b, &a); err != nil {
			slog.Warn("legacy user file invalid", "path", path, "error", err)
			continue
		}
		if a.Password == "" {
			continue
		}
		a.Username = strings.TrimSuffix(e.Name(), ".json")
		accounts = append(accounts, a)
		files = append(files, path)
	}
	return accounts, files, nil
}

// ensureHash keeps bcrypt hashes and hashes anything else.
func ensureHash(password string) (string, error) {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
