// Package health provides the health check endpoint for the API service,
// probing the database and the external PIN oracle.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkanhendra/pinlogin/internal/api"
)

// ServiceStatus represents the status of a single dependency
type ServiceStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler handles health check requests
type Handler struct {
	dbPool    *pgxpool.Pool
	oracleURL string
	client    *http.Client
	version   string
	timeout   time.Duration
}

// Config holds health handler configuration
type Config struct {
	DBPool    *pgxpool.Pool
	OracleURL string
	Version   string
	Timeout   time.Duration
}

// NewHandler creates a new health check handler
func NewHandler(cfg Config) *Handler {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Handler{
		dbPool:    cfg.DBPool,
		oracleURL: cfg.OracleURL,
		client:    &http.Client{Timeout: timeout},
		version:   cfg.Version,
		timeout:   timeout,
	}
}

// Health responds with per-dependency status. The endpoint itself always
// answers 200; degraded dependencies show up in the body.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	services := map[string]ServiceStatus{
		"database":   h.checkDatabase(ctx),
		"pin_oracle": h.checkOracle(ctx),
	}

	api.WriteJSON(w, http.StatusOK, api.Response{
		Success: true,
		Message: "Server is running",
		Data: map[string]interface{}{
			"services":  services,
			"version":   h.version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *Handler) checkDatabase(ctx context.Context) ServiceStatus {
	if h.dbPool == nil {
		return ServiceStatus{Status: "unknown"}
	}

	start := time.Now()
	if err := h.dbPool.Ping(ctx); err != nil {
		return ServiceStatus{Status: "down", Error: err.Error()}
	}
	return ServiceStatus{Status: "up", Latency: time.Since(start).String()}
}

func (h *Handler) checkOracle(ctx context.Context) ServiceStatus {
	if h.oracleURL == "" {
		return ServiceStatus{Status: "unknown"}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.oracleURL, nil)
	if err != nil {
		return ServiceStatus{Status: "down", Error: err.Error()}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return ServiceStatus{Status: "down", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ServiceStatus{Status: "degraded", Latency: time.Since(start).String()}
	}
	return ServiceStatus{Status: "up", Latency: time.Since(start).String()}
}
