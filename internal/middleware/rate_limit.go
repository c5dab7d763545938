package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/arkanhendra/pinlogin/internal/api"
	"github.com/arkanhendra/pinlogin/internal/metrics"
)

// bucket is a per-key fixed-window counter.
type bucket struct {
	windowStart time.Time
	count       int
}

// RateLimiter implements fixed-window request counting, keyed by caller
// identity. State is process-local; buckets are replaced lazily on the first
// request after their window elapses, so no sweeper goroutine is needed.
// Increments per key are serialized under the mutex.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	message string
	now     func() time.Time
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		message: "Too many login attempts, please try again later",
		now:     time.Now,
	}
}

// WithMessage overrides the response body message sent on rejection.
func (rl *RateLimiter) WithMessage(message string) *RateLimiter {
	rl.message = message
	return rl
}

// Allow counts one request against the key's current window and decides
// whether it may proceed.
func (rl *RateLimiter) Allow(key string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		b = &bucket{windowStart: now, count: 0}
		rl.buckets[key] = b
	}

	b.count++
	reset := b.windowStart.Add(rl.window)
	remaining := rl.limit - b.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   b.count <= rl.limit,
		Remaining: remaining,
		Reset:     reset,
	}
}

// Limit returns middleware enforcing the rate limit per client IP, emitting
// standard rate-limit headers on every response.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := rl.Allow(limiterKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.Reset).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			metrics.RateLimitedTotal.Inc()
			api.WriteError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", rl.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limiterKey derives the bucket key from the client IP. Behind the RealIP
// middleware RemoteAddr already holds the forwarded address.
func limiterKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
