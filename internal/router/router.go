// Package router sets up all HTTP routes and middleware chains of the
// dashboard API. Routes are grouped by the viewer level they require.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starwishes/Nav/internal/handlers"
	"github.com/starwishes/Nav/internal/middleware"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions middleware.SessionGetter
	Visits   middleware.VisitRecorder

	Public    *handlers.Public
	Auth      *handlers.Auth
	Bookmarks *handlers.Bookmarks
	Admin     *handlers.Admin

	// LoginLimiter guards login and registration.
	LoginLimiter *middleware.RateLimiter
	// SaveLimiter guards full tree saves.
	SaveLimiter *middleware.RateLimiter

	SecureCookies bool
}

// NewSaveLimiter returns the limiter for full tree saves.
func NewSaveLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter("save", 60, time.Minute)
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware. The session is loaded before the logger so
	// request logs carry the user.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Probes: no CSRF, no rate limits.
	r.Get("/health", d.Public.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Public
		r.Get("/settings", d.Public.Settings)
		r.With(middleware.RecordVisits(d.Visits)).Get("/data", d.Public.Data)
		r.Post("/items/{id}/click", d.Public.Click)
		r.Get("/favicon", d.Public.Favicon)
		r.Post("/logout", d.Auth.Logout)
		r.Group(func(r chi.Router) {
			r.Use(d.LoginLimiter.Middleware)
			r.Post("/login", d.Auth.Login)
			r.Post("/register", d.Auth.Register)
		})

		// Any signed-in account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/profile", d.Auth.Profile)
			r.Patch("/profile", d.Auth.UpdateProfile)
			r.Get("/sessions", d.Auth.Sessions)
			r.Post("/sessions/revoke-others", d.Auth.RevokeOthers)
			r.Delete("/sessions/{id}", d.Auth.RevokeSession)

			r.Get("/search", d.Bookmarks.Search)
			r.Get("/check-url", d.Bookmarks.CheckURL)
			r.Post("/items", d.Bookmarks.AddItem)
			r.Post("/categories", d.Bookmarks.AddCategory)
		})

		// Administrators only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.With(d.SaveLimiter.Middleware).Put("/data", d.Bookmarks.ReplaceAll)
			r.Put("/items/{id}", d.Bookmarks.UpdateItem)
			r.Delete("/items/{id}", d.Bookmarks.DeleteItem)
			r.Put("/categories/{id}", d.Bookmarks.UpdateCategory)
			r.Delete("/categories/{id}", d.Bookmarks.DeleteCategory)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/data", d.Bookmarks.Graph)
				r.Post("/check-links", d.Bookmarks.CheckLinks)

				r.Route("/trash", func(r chi.Router) {
					r.Get("/", d.Admin.Trash)
					r.Delete("/", d.Admin.EmptyTrash)
					r.Post("/{id}/restore", d.Admin.Restore)
					r.Delete("/{id}", d.Admin.PurgeTrashEntry)
				})

				r.Get("/settings", d.Admin.Settings)
				r.Put("/settings", d.Admin.UpdateSettings)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", d.Admin.Users)
					r.Post("/", d.Admin.CreateUser)
					r.Put("/{username}", d.Admin.UpdateUser)
					r.Delete("/{username}", d.Admin.DeleteUser)
				})

				r.Get("/audit", d.Admin.Audit)
				r.Get("/stats", d.Admin.Stats)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
