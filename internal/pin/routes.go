package pin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers PIN routes with the Chi router. The verification
// endpoint is reachable only post-login; mockOracle is the in-process oracle
// endpoint kept for local development and tests.
func RegisterRoutes(r chi.Router, handler *Handler, mockOracle http.HandlerFunc, authMiddleware Middleware) {
	r.Route("/pin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/verify", handler.VerifyPin)
		})

		if mockOracle != nil {
			r.Post("/verify-pin", mockOracle)
		}
	})
}
