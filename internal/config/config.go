// Package config handles application configuration loading from environment
// variables and an optional config file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAdminPassword is the first-run admin password. It is refused in
// production.
const DefaultAdminPassword = "admin123"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// DataDir holds the SQLite file and the legacy JSON files.
	DataDir string

	// Storage engine: "sqlite" or "postgres".
	DBDriver   string
	SQLitePath string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache). An empty address disables it.
	ValkeyAddr     string
	ValkeyPassword string
	ValkeyDB       int

	// Logging
	LogLevel string
	LogFile  string

	// First-run admin account
	AdminUsername string
	AdminPassword string

	SessionTTL       time.Duration
	RecycleRetention time.Duration // 0 keeps trash forever

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from the given file (any format viper
// understands) and lets environment variables override it. An empty path
// means environment only. Returns an error if critical values are unsafe in
// production mode.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DataDir:    v.GetString("DATA_DIR"),
		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		SQLitePath: v.GetString("SQLITE_PATH"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyAddr:     v.GetString("VALKEY_ADDR"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       v.GetInt("VALKEY_DB"),

		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFile:  v.GetString("LOG_FILE"),

		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),

		SessionTTL:       v.GetDuration("SESSION_TTL"),
		RecycleRetention: v.GetDuration("RECYCLE_RETENTION"),

		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
	}

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "nav.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("SQLITE_PATH", "")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "nav")
	v.SetDefault("POSTGRES_PASSWORD", "changeme")
	v.SetDefault("POSTGRES_DB", "nav")

	v.SetDefault("VALKEY_ADDR", "")
	v.SetDefault("VALKEY_PASSWORD", "")
	v.SetDefault("VALKEY_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", DefaultAdminPassword)

	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("RECYCLE_RETENTION", time.Duration(0))

	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", 15*time.Minute)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.LoginRateLimit < 1 || c.LoginRateWindow <= 0 {
		return errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	if c.RecycleRetention < 0 {
		return errors.New("RECYCLE_RETENTION must not be negative")
	}

	if c.Env == "production" {
		if c.AdminPassword == DefaultAdminPassword {
			return errors.New("ADMIN_PASSWORD must be set in production")
		}
		if c.DBDriver == "postgres" && c.DBPassword == "changeme" {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
