package oracle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"pgregory.net/rapid"
)

func newTestHandler() *Handler {
	return NewHandler(Config{ValidPIN: "123456"})
}

// testingT is the subset of testing.T the helpers need; *rapid.T satisfies
// it as well.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

func postPin(t testingT, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/verify-pin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.VerifyPin(rec, req)
	return rec
}

func decodeResponse(t testingT, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestVerifyPinValid(t *testing.T) {
	h := newTestHandler()
	rec := postPin(t, h, `{"pin":"123456"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Code != CodePinValid {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Verified == nil || !*resp.Verified {
		t.Error("expected verified=true")
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestVerifyPinInvalid(t *testing.T) {
	h := newTestHandler()
	rec := postPin(t, h, `{"pin":"654321"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Code != CodePinInvalid {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Verified == nil || *resp.Verified {
		t.Error("expected verified=false")
	}
}

func TestVerifyPinMissing(t *testing.T) {
	h := newTestHandler()
	for name, body := range map[string]string{
		"empty pin":  `{"pin":""}`,
		"no field":   `{}`,
		"empty body": ``,
		"bad json":   `{"pin":`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postPin(t, h, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Code != CodePinRequired {
				t.Errorf("expected code %s, got %s", CodePinRequired, resp.Code)
			}
		})
	}
}

func TestVerifyPinFormat(t *testing.T) {
	h := newTestHandler()
	for _, pin := range []string{"12345", "1234567", "12345a", "abcdef", " 123456", "12 456"} {
		rec := postPin(t, h, `{"pin":"`+pin+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("pin %q: expected 400, got %d", pin, rec.Code)
			continue
		}
		if resp := decodeResponse(t, rec); resp.Code != CodeInvalidFormat {
			t.Errorf("pin %q: expected code %s, got %s", pin, CodeInvalidFormat, resp.Code)
		}
	}
}

// Any well-formed six digit PIN other than the configured one must be
// rejected as invalid, never as a format error.
func TestVerifyPinProperty(t *testing.T) {
	h := newTestHandler()
	rapid.Check(t, func(t *rapid.T) {
		pin := rapid.StringMatching(`[0-9]{6}`).Draw(t, "pin")

		rec := postPin(t, h, `{"pin":"`+pin+`"}`)
		resp := decodeResponse(t, rec)

		if pin == "123456" {
			if rec.Code != http.StatusOK || resp.Code != CodePinValid {
				t.Errorf("configured pin rejected: %d %+v", rec.Code, resp)
			}
		} else {
			if rec.Code != http.StatusUnauthorized || resp.Code != CodePinInvalid {
				t.Errorf("pin %q: expected 401 PIN_INVALID, got %d %s", pin, rec.Code, resp.Code)
			}
		}
	})
}

func TestStatsCounting(t *testing.T) {
	h := newTestHandler()

	postPin(t, h, `{"pin":"123456"}`) // success
	postPin(t, h, `{"pin":"000000"}`) // failed
	postPin(t, h, `{"pin":"bad"}`)    // format error: counted as request only

	snap := h.Stats().Snapshot()
	if snap.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", snap.TotalRequests)
	}
	if snap.SuccessfulVerifications != 1 {
		t.Errorf("expected 1 success, got %d", snap.SuccessfulVerifications)
	}
	if snap.FailedVerifications != 1 {
		t.Errorf("expected 1 failure, got %d", snap.FailedVerifications)
	}
	if snap.SuccessRate != "33.33%" {
		t.Errorf("expected success rate 33.33%%, got %s", snap.SuccessRate)
	}
}

func TestStatsReset(t *testing.T) {
	h := newTestHandler()
	postPin(t, h, `{"pin":"123456"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/stats/reset", nil)
	rec := httptest.NewRecorder()
	h.ResetStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	snap := h.Stats().Snapshot()
	if snap.TotalRequests != 0 || snap.SuccessfulVerifications != 0 || snap.FailedVerifications != 0 {
		t.Errorf("expected zeroed counters, got %+v", snap)
	}
	if snap.SuccessRate != "0%" {
		t.Errorf("expected 0%% success rate after reset, got %s", snap.SuccessRate)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestHandler()
	postPin(t, h, `{"pin":"123456"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.GetStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Success bool     `json:"success"`
		Data    Snapshot `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode stats body: %v", err)
	}
	if !body.Success || body.Data.TotalRequests != 1 {
		t.Errorf("unexpected stats body: %+v", body)
	}
}

func TestRoutesNotFound(t *testing.T) {
	h := newTestHandler()
	r := chi.NewRouter()
	RegisterRoutes(r, h, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, resp.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler()
	r := chi.NewRouter()
	RegisterRoutes(r, h, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success=true from health endpoint")
	}
}
