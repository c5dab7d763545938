package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		d := rl.Allow("203.0.113.1")
		if !d.Allowed {
			t.Fatalf("request %d unexpectedly rejected", i+1)
		}
		if d.Remaining != 5-(i+1) {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 5-(i+1), d.Remaining)
		}
	}

	d := rl.Allow("203.0.113.1")
	if d.Allowed {
		t.Error("6th request should be rejected")
	}
	if d.Remaining != 0 {
		t.Errorf("expected remaining 0 after rejection, got %d", d.Remaining)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("k")
	rl.Allow("k")
	if d := rl.Allow("k"); d.Allowed {
		t.Fatal("3rd request in window should be rejected")
	}

	// One second before expiry the window still holds.
	now = now.Add(59 * time.Second)
	if d := rl.Allow("k"); d.Allowed {
		t.Fatal("request just before window expiry should be rejected")
	}

	now = now.Add(time.Second)
	d := rl.Allow("k")
	if !d.Allowed {
		t.Error("request after window expiry should be allowed")
	}
	if d.Remaining != 1 {
		t.Errorf("fresh window: expected remaining 1, got %d", d.Remaining)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if d := rl.Allow("a"); !d.Allowed {
		t.Fatal("first request for key a should be allowed")
	}
	if d := rl.Allow("a"); d.Allowed {
		t.Fatal("second request for key a should be rejected")
	}
	if d := rl.Allow("b"); !d.Allowed {
		t.Error("key b must have its own counter")
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	const limit = 50
	rl := NewRateLimiter(limit, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("expected exactly %d allowed under contention, got %d", limit, allowed)
	}
}

func TestLimitMiddlewareHeaders(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := doRequest()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("expected X-RateLimit-Limit 2, got %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Errorf("expected X-RateLimit-Remaining 1, got %q", got)
	}
	if _, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64); err != nil {
		t.Errorf("X-RateLimit-Reset is not a unix timestamp: %v", err)
	}

	doRequest()
	rec = doRequest()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on rejection")
	}

	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode rejection body: %v", err)
	}
	if body.Success {
		t.Error("rejection body must have success=false")
	}
	if body.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("expected code TOO_MANY_REQUESTS, got %q", body.Code)
	}
}

func TestLimitMiddlewareKeysByIP(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := doRequest("203.0.113.1:1000"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := doRequest("203.0.113.1:2000"); code != http.StatusTooManyRequests {
		t.Errorf("same IP different port must share a bucket, got %d", code)
	}
	if code := doRequest("203.0.113.2:1000"); code != http.StatusOK {
		t.Errorf("different IP must have its own bucket, got %d", code)
	}
}

func TestRateLimiterCustomMessage(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute).WithMessage("custom rejection")
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/verify-pin", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "custom rejection" {
		t.Errorf("expected custom message, got %q", body.Message)
	}
}
