package pin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/arkanhendra/pinlogin/internal/oracle"
)

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

// The in-process oracle endpoint is mounted beside /pin/verify and must be
// reachable without a token.
func TestMockOracleMountedWithoutAuth(t *testing.T) {
	oracleHandler := oracle.NewHandler(oracle.Config{ValidPIN: "123456"})
	h := NewHandler(NewService(stubVerifier{Result{Verified: true}}, &mockPinRecorder{}, nil), true)

	r := chi.NewRouter()
	RegisterRoutes(r, h, oracleHandler.VerifyPin, denyAll)

	req := httptest.NewRequest(http.MethodPost, "/pin/verify-pin", strings.NewReader(`{"pin":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from mock oracle, got %d", rec.Code)
	}

	// The guarded route still requires the auth middleware to pass.
	req = httptest.NewRequest(http.MethodPost, "/pin/verify", strings.NewReader(`{"pin":"123456"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from guarded route, got %d", rec.Code)
	}
}
