package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/store"
)

var (
	purgeOlderThan time.Duration

	trashCmd = &cobra.Command{
		Use:   "trash",
		Short: "Manage the recycle bin",
	}

	trashEmptyCmd = &cobra.Command{
		Use:   "empty",
		Short: "Delete every recycle bin entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(svc *bookmark.Service) error {
				n, err := svc.EmptyTrash(cmd.Context(), cliActor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", n)
				return nil
			})
		},
	}

	trashPurgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete recycle bin entries older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			if purgeOlderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			return withService(func(svc *bookmark.Service) error {
				n, err := svc.PurgeTrash(cmd.Context(), cliActor, purgeOlderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries older than %s\n", n, purgeOlderThan)
				return nil
			})
		},
	}
)

// cliActor is recorded in the audit log for maintenance commands.
var cliActor = bookmark.Actor{Username: "cli", IP: "local"}

func init() {
	trashPurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "minimum age of purged entries")
	trashCmd.AddCommand(trashEmptyCmd, trashPurgeCmd)
}

// withService opens the database and runs fn against a bookmark service.
func withService(fn func(*bookmark.Service) error) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	bookmarks := store.NewBookmarkStore(db)
	svc := bookmark.NewService(bookmarks, store.NewRecycleStore(bookmarks), store.NewAuditStore(db))
	return fn(svc)
}
