// Package main is the entry point for the Nav bookmark dashboard. The
// root command serves the API; subcommands run maintenance tasks against
// the same database.
package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/starwishes/Nav/internal/config"
	"github.com/starwishes/Nav/internal/database"
	"github.com/starwishes/Nav/internal/handlers"
	"github.com/starwishes/Nav/internal/logging"
)

var (
	configPath string

	cfg       *config.Config
	logCloser io.Closer

	rootCmd = &cobra.Command{
		Use:               "nav",
		Short:             "Self-hosted bookmark dashboard",
		Version:           handlers.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
		RunE: runServe,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (yaml, json or toml); environment variables override it")
	rootCmd.AddCommand(serveCmd, migrateCmd, trashCmd)
}

// setup loads the configuration and installs the process logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg = loaded

	logger, closer := logging.New(logging.Options{
		Level: cfg.LogLevel,
		JSON:  !cfg.IsDev(),
		File:  cfg.LogFile,
	})
	slog.SetDefault(logger)
	logCloser = closer

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"driver", cfg.DBDriver,
		"addr", cfg.Addr(),
	)
	return nil
}

// openDatabase connects to the configured engine and applies pending
// migrations.
func openDatabase() (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if cfg.DBDriver == database.DriverPostgres {
		db, err = database.Connect(database.DriverPostgres, cfg.DSN())
	} else {
		db, err = database.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
