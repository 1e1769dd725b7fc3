// Package router sets up all HTTP routes and middleware chains for the
// Inkwell server. The admin surface is a JSON API under /admin; everything
// else resolves through the hierarchical public page handler.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

// Options carries router configuration.
type Options struct {
	// SecureCookies marks the CSRF cookie Secure; enable outside dev.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, public *handlers.Public, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, no auth, no CSRF.
	r.Get("/health", public.Health)

	// Login attempts are rate limited per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Admin API: session-backed auth plus CSRF double-submit.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.With(loginLimiter.Middleware).Post("/login", admin.Login)
		r.Post("/logout", admin.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", admin.Me)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoryList)
				r.Get("/tree", admin.CategoryTree)
				r.Post("/", admin.CategoryCreate)
				r.Put("/{id}", admin.CategoryUpdate)
				r.Delete("/{id}", admin.CategoryDelete)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostList)
				r.Post("/", admin.PostCreate)
				r.Get("/{id}", admin.PostGet)
				r.Put("/{id}", admin.PostUpdate)
				r.Delete("/{id}", admin.PostDelete)
				r.Get("/{id}/views", admin.PostViews)
			})
		})
	})

	// Public site: anonymous visitors get a tracking cookie, pages resolve
	// by walking the category tree.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Visitor)
		r.Get("/", public.Homepage)
		r.Get("/*", public.Page)
	})

	return r
}
