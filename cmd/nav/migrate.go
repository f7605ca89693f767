package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starwishes/Nav/internal/database"
	"github.com/starwishes/Nav/internal/legacy"
	"github.com/starwishes/Nav/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations, import legacy JSON files and seed first-run data",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		rep, err := prepareData(cmd.Context(), db)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range []struct {
			name string
			res  legacy.Result
		}{
			{"bookmarks", rep.Bookmarks},
			{"users", rep.Users},
			{"settings", rep.Settings},
		} {
			switch {
			case r.res.Err != nil:
				fmt.Fprintf(out, "%-10s failed: %v\n", r.name, r.res.Err)
			case r.res.Skipped:
				fmt.Fprintf(out, "%-10s skipped\n", r.name)
			default:
				fmt.Fprintf(out, "%-10s imported %d from %s\n", r.name, r.res.Imported, r.res.Source)
			}
		}
		return nil
	},
}

// prepareData imports legacy files, then seeds whatever is still empty.
// Import failures are reported but never stop startup.
func prepareData(ctx context.Context, db *sql.DB) (legacy.Report, error) {
	runner := legacy.NewRunner(cfg.DataDir, cfg.AdminUsername,
		store.NewBookmarkStore(db), store.NewUserStore(db), store.NewSettingStore(db))
	rep := runner.Run(ctx)

	if err := database.Seed(ctx, db, database.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return rep, fmt.Errorf("seed database: %w", err)
	}
	return rep, nil
}
