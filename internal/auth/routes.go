package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers all authentication routes with the Chi router.
// The rate limiter guards the login route only; registration and profile
// reads are not attempt-counted.
func RegisterRoutes(r chi.Router, handler *AuthHandler, authMiddleware, loginRateLimit Middleware) {
	r.Route("/auth", func(r chi.Router) {
		// Public routes
		r.Post("/register", handler.Register)
		r.With(loginRateLimit).Post("/login", handler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", handler.GetProfile)
			r.Get("/history", handler.GetHistory)
		})
	})
}
