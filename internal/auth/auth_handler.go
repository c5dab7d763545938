package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/arkanhendra/pinlogin/internal/api"
	appctx "github.com/arkanhendra/pinlogin/internal/context"
)

// AuthHandler handles HTTP requests for authentication endpoints
type AuthHandler struct {
	authService *AuthService
	devMode     bool
}

// NewAuthHandler creates a new AuthHandler instance. devMode controls whether
// 500 responses carry diagnostic detail.
func NewAuthHandler(authService *AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		devMode:     devMode,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body")
		return
	}

	if verrs := ValidateRequest(req); len(verrs) > 0 {
		api.WriteJSON(w, http.StatusBadRequest, api.Response{
			Success: false,
			Message: "Request validation failed",
			Code:    api.CodeValidationError,
			Data:    map[string]interface{}{"errors": verrs},
		})
		return
	}

	response, err := h.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameExists):
			api.WriteError(w, http.StatusBadRequest, CodeUsernameExists, "Username already exists")
		case errors.Is(err, ErrEmailExists):
			api.WriteError(w, http.StatusBadRequest, CodeEmailExists, "Email already exists")
		default:
			api.WriteInternalError(w, err, h.devMode)
		}
		return
	}

	api.WriteSuccess(w, http.StatusCreated, "Registration successful", response)
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationError, "Invalid request body")
		return
	}

	if verrs := ValidateRequest(req); len(verrs) > 0 {
		api.WriteJSON(w, http.StatusBadRequest, api.Response{
			Success: false,
			Message: "Request validation failed",
			Code:    api.CodeValidationError,
			Data:    map[string]interface{}{"errors": verrs},
		})
		return
	}

	ipAddress := clientIP(r)
	userAgent := r.UserAgent()

	response, err := h.authService.Login(r.Context(), req, ipAddress, userAgent)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.WriteError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
			return
		}
		api.WriteInternalError(w, err, h.devMode)
		return
	}

	api.WriteSuccess(w, http.StatusOK, "Login successful", response)
}

// GetProfile handles getting the authenticated user's profile
// GET /api/auth/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token")
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.WriteError(w, http.StatusNotFound, CodeUserNotFound, "User not found")
			return
		}
		api.WriteInternalError(w, err, h.devMode)
		return
	}

	api.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{"user": profile})
}

// GetHistory handles listing the authenticated user's recent login attempts
// GET /api/auth/history?limit=N
func (h *AuthHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, CodeAuthTokenInvalid, "Invalid or expired token")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	history := h.authService.GetLoginHistory(r.Context(), userID, limit)

	api.WriteSuccess(w, http.StatusOK, "", map[string]interface{}{"history": history})
}

// clientIP returns the request's client address without the port. Behind the
// RealIP middleware RemoteAddr already holds the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
