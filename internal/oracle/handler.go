package oracle

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"time"
)

// Response is the oracle wire format. Unlike the main API envelope it carries
// the verification verdict at the top level, which is what callers decode.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Verified  *bool  `json:"verified,omitempty"`
	Timestamp string `json:"timestamp"`
}

const (
	CodePinRequired   = "PIN_REQUIRED"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodePinValid      = "PIN_VALID"
	CodePinInvalid    = "PIN_INVALID"
	CodeNotFound      = "NOT_FOUND"
)

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// Config configures the oracle handler.
type Config struct {
	// ValidPIN is the single PIN the oracle accepts.
	ValidPIN string
	// ResponseDelay simulates upstream processing time. It is applied only
	// after the request passes format validation.
	ResponseDelay time.Duration
	Logger        *slog.Logger
}

// Handler serves the PIN verification oracle endpoints.
type Handler struct {
	validPIN string
	delay    time.Duration
	stats    *Stats
	log      *slog.Logger
}

// NewHandler creates an oracle handler with fresh statistics.
func NewHandler(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		validPIN: cfg.ValidPIN,
		delay:    cfg.ResponseDelay,
		stats:    NewStats(),
		log:      log,
	}
}

// Stats exposes the handler's counters, mainly for tests.
func (h *Handler) Stats() *Stats {
	return h.stats
}

type verifyRequest struct {
	Pin string `json:"pin"`
}

// VerifyPin checks a submitted PIN against the configured valid PIN.
// Requests with a missing or malformed PIN are rejected before the simulated
// delay; only well-formed PINs pay the latency cost.
func (h *Handler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	h.stats.RecordRequest()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pin == "" {
		h.write(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "PIN is required",
			Code:    CodePinRequired,
		})
		return
	}

	if !pinPattern.MatchString(req.Pin) {
		h.write(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "PIN must be exactly 6 digits",
			Code:    CodeInvalidFormat,
		})
		return
	}

	if h.delay > 0 {
		select {
		case <-time.After(h.delay):
		case <-r.Context().Done():
			return
		}
	}

	if subtle.ConstantTimeCompare([]byte(req.Pin), []byte(h.validPIN)) == 1 {
		h.stats.RecordSuccess()
		h.log.Info("pin verified", "remote_addr", r.RemoteAddr)
		verified := true
		h.write(w, http.StatusOK, Response{
			Success:  true,
			Message:  "PIN is valid",
			Code:     CodePinValid,
			Verified: &verified,
		})
		return
	}

	h.stats.RecordFailure()
	h.log.Info("pin rejected", "remote_addr", r.RemoteAddr)
	verified := false
	h.write(w, http.StatusUnauthorized, Response{
		Success:  false,
		Message:  "PIN is invalid",
		Code:     CodePinInvalid,
		Verified: &verified,
	})
}

// GetStats reports verification counters and uptime.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.stats.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      snap,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ResetStats zeroes the verification counters.
func (h *Handler) ResetStats(w http.ResponseWriter, r *http.Request) {
	h.stats.Reset()
	h.write(w, http.StatusOK, Response{
		Success: true,
		Message: "Statistics reset",
	})
}

// Health reports liveness for the oracle process.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "External PIN verification API is running",
		"service":   "pin-oracle",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the fallback handler for unknown oracle routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, http.StatusNotFound, Response{
		Success: false,
		Message: "Endpoint not found",
		Code:    CodeNotFound,
	})
}

func (h *Handler) write(w http.ResponseWriter, status int, resp Response) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
