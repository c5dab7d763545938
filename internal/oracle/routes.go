package oracle

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware matches the shape produced by the rate limiter so the oracle
// process can throttle verification traffic without importing it here.
type Middleware func(http.Handler) http.Handler

// RegisterRoutes mounts the oracle endpoints on the given router. The rate
// limit middleware, when non-nil, applies to every /api route.
func RegisterRoutes(r chi.Router, h *Handler, rateLimit Middleware) {
	r.Route("/api", func(api chi.Router) {
		if rateLimit != nil {
			api.Use(rateLimit)
		}
		api.Get("/health", h.Health)
		api.Post("/verify-pin", h.VerifyPin)
		api.Get("/stats", h.GetStats)
		api.Post("/stats/reset", h.ResetStats)
	})

	r.NotFound(h.NotFound)
}
