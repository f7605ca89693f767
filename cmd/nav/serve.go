package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/cache"
	"github.com/starwishes/Nav/internal/favicon"
	"github.com/starwishes/Nav/internal/handlers"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/router"
	"github.com/starwishes/Nav/internal/session"
	"github.com/starwishes/Nav/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := prepareData(ctx, db); err != nil {
		return err
	}

	// Valkey only backs the favicon cache, so the API runs without it.
	var icons favicon.Cache
	if cfg.ValkeyAddr != "" {
		client, err := cache.ConnectValkey(cfg.ValkeyAddr, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			slog.Warn("valkey unavailable, favicon cache disabled", "error", err)
		} else {
			defer client.Close()
			icons = cache.NewFaviconCache(client, cache.DefaultFaviconTTL)
		}
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	settingStore := store.NewSettingStore(db)
	auditStore := store.NewAuditStore(db)
	statsStore := store.NewStatsStore(db)
	bookmarkStore := store.NewBookmarkStore(db)

	service := bookmark.NewService(bookmarkStore, store.NewRecycleStore(bookmarkStore), auditStore)
	service.SetRecycleRetention(cfg.RecycleRetention)

	secureCookies := !cfg.IsDev()
	sessions := session.NewManager(sessionStore, userStore, cfg.SessionTTL, secureCookies)
	outbound := &http.Client{Timeout: 10 * time.Second}

	loginLimiter := middleware.NewRateLimiter("login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer loginLimiter.Stop()
	saveLimiter := router.NewSaveLimiter()
	defer saveLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessions,
		Visits:        statsStore,
		Public:        handlers.NewPublic(service, settingStore, favicon.NewFetcher(outbound, icons, nil)),
		Auth:          handlers.NewAuth(sessions, sessionStore, userStore, settingStore, auditStore),
		Bookmarks:     handlers.NewBookmarks(service, outbound),
		Admin:         handlers.NewAdmin(service, userStore, settingStore, auditStore, statsStore),
		LoginLimiter:  loginLimiter,
		SaveLimiter:   saveLimiter,
		SecureCookies: secureCookies,
	})

	// Warm the read cache so the first visitor does not pay for the load.
	if _, err := service.Graph(ctx); err != nil {
		slog.Warn("failed to warm bookmark cache", "error", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
