// Package api defines the JSON response envelope shared by every HTTP
// surface of the service: {success, message?, data?, code?}.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the standard envelope for all API responses.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Common error codes shared across handlers.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeNotFound        = "NOT_FOUND"
)

// WriteJSON writes an arbitrary envelope with the given status code.
func WriteJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteSuccess writes a success envelope with optional message and data.
func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError writes a failure envelope with a machine-readable code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// WriteInternalError writes a generic 500. The underlying error text is
// included only when detail is true (development configuration), so storage
// and transport diagnostics never leak in production.
func WriteInternalError(w http.ResponseWriter, err error, detail bool) {
	resp := Response{
		Success: false,
		Message: "Internal server error",
		Code:    CodeInternalError,
	}
	if detail && err != nil {
		resp.Error = err.Error()
	}
	WriteJSON(w, http.StatusInternalServerError, resp)
}
