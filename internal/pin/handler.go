package pin

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/arkanhendra/pinlogin/internal/api"
	"github.com/arkanhendra/pinlogin/internal/auth"
	appctx "github.com/arkanhendra/pinlogin/internal/context"
)

// VerifyRequest represents the PIN verification request payload
type VerifyRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// Handler handles HTTP requests for PIN verification
type Handler struct {
	service *Service
	devMode bool
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service, devMode bool) *Handler {
	return &Handler{
		service: service,
		devMode: devMode,
	}
}

// VerifyPin handles PIN verification for an authenticated user
// POST /api/pin/verify
func (h *Handler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenInvalid, "Invalid or expired token")
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body")
		return
	}

	if verrs := auth.ValidateRequest(req); len(verrs) > 0 {
		api.WriteJSON(w, http.StatusBadRequest, api.Response{
			Success: false,
			Message: "Request validation failed",
			Code:    api.CodeValidationError,
			Data:    map[string]interface{}{"errors": verrs},
		})
		return
	}

	err := h.service.VerifyPin(r.Context(), userID, clientIP(r), req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, ErrPinInvalid):
			api.WriteError(w, http.StatusUnauthorized, CodePinInvalid, "Invalid PIN")
		case errors.Is(err, ErrServiceUnavailable):
			api.WriteError(w, http.StatusServiceUnavailable, CodeServiceUnavailable,
				"PIN verification service temporarily unavailable")
		default:
			api.WriteInternalError(w, err, h.devMode)
		}
		return
	}

	api.WriteSuccess(w, http.StatusOK, "PIN verified successfully", nil)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
