// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Blogium server. Public pages are readable by anyone; authoring routes
// sit behind the session auth middleware.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blogium/internal/handlers"
	"blogium/internal/middleware"
	"blogium/internal/render"
	"blogium/internal/session"
	"blogium/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies controls the Secure flag on
// the CSRF cookie and should be true outside development.
func New(
	sessionStore *session.Store,
	renderer *render.Renderer,
	public *handlers.Public,
	posts *handlers.Posts,
	comments *handlers.Comments,
	auth *handlers.Auth,
	secureCookies bool,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	r.NotFound(renderer.NotFound)

	// Health check — no CSRF, no session needed.
	r.Get("/health", healthHandler)

	// Embedded static assets. The FS root already contains static/, so
	// no prefix stripping is needed.
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Brute-force protection for the credential endpoints.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// All page routes carry the CSRF cookie.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))

		// Public pages.
		r.Get("/", public.Home)
		r.Get("/category/{slug}", public.CategoryFeed)
		r.Get("/profile/{username}", public.Profile)
		r.Get("/posts/{id}", public.PostDetail)

		// Auth pages.
		r.Route("/auth", func(r chi.Router) {
			r.Get("/registration", auth.RegistrationPage)
			r.With(authLimiter.Middleware).Post("/registration", auth.RegistrationSubmit)
			r.Get("/login", auth.LoginPage)
			r.With(authLimiter.Middleware).Post("/login", auth.LoginSubmit)
			r.Post("/logout", auth.Logout)
		})

		// Authoring — requires a logged-in session. Ownership checks
		// happen in the handlers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/posts/new", posts.New)
			r.Post("/posts/new", posts.Create)
			r.Get("/posts/{id}/edit", posts.EditPage)
			r.Post("/posts/{id}/edit", posts.Update)
			r.Get("/posts/{id}/delete", posts.DeletePage)
			r.Post("/posts/{id}/delete", posts.Delete)

			r.Post("/posts/{id}/comments", comments.Create)
			r.Get("/posts/{postID}/comments/{id}/edit", comments.EditPage)
			r.Post("/posts/{postID}/comments/{id}/edit", comments.Update)
			r.Get("/posts/{postID}/comments/{id}/delete", comments.DeletePage)
			r.Post("/posts/{postID}/comments/{id}/delete", comments.Delete)

			r.Get("/profile/edit", auth.ProfileEditPage)
			r.Post("/profile/edit", auth.ProfileEditSubmit)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
