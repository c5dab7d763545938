package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arkanhendra/pinlogin/internal/api"
	"github.com/arkanhendra/pinlogin/internal/auth"
	appctx "github.com/arkanhendra/pinlogin/internal/context"
)

// AuthMiddleware handles bearer token authentication for protected routes
type AuthMiddleware struct {
	tokenService *auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(tokenService *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the Authorization bearer token and injects the
// decoded identity into the request context. Downstream handlers run only
// for verified tokens.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenMissing, "No token provided or invalid format")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenMissing, "No token provided or invalid format")
			return
		}

		identity, err := m.tokenService.Verify(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenExpired, "Token expired")
			case errors.Is(err, auth.ErrTokenMalformed):
				api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenInvalid, "Invalid token")
			default:
				api.WriteError(w, http.StatusInternalServerError, api.CodeInternalError, "Token verification failed")
			}
			return
		}

		ctx := appctx.WithUser(r.Context(), identity.UserID, identity.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
