// Package pin implements the second authentication factor: submitting a
// one-time PIN to the external verification oracle and classifying the
// outcome.
package pin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/arkanhendra/pinlogin/internal/metrics"
)

// FailureKind classifies why a PIN verification call did not succeed.
type FailureKind string

const (
	KindNone              FailureKind = ""
	KindInvalidFormat     FailureKind = "invalid_format"
	KindInvalidPin        FailureKind = "invalid_pin"
	KindTimeout           FailureKind = "timeout"
	KindConnectionRefused FailureKind = "connection_refused"
	KindUpstreamError     FailureKind = "upstream_error"
)

// Result is the transient outcome of a single verification call. Only its
// audit projection is persisted.
type Result struct {
	Verified   bool
	Kind       FailureKind
	HTTPStatus int
}

// Oracle response codes this client understands.
const (
	oracleCodeInvalidPin    = "PIN_INVALID"
	oracleCodeInvalidFormat = "INVALID_FORMAT"
	oracleCodePinRequired   = "PIN_REQUIRED"
)

// Verifier submits PINs to the external oracle over HTTP. Exactly one
// bounded attempt per call; there is no retry policy anywhere in this path.
type Verifier struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// VerifierConfig holds configuration for the oracle client.
type VerifierConfig struct {
	URL     string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewVerifier creates a Verifier with the configured strict timeout.
func NewVerifier(cfg VerifierConfig) *Verifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		url:     cfg.URL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type verifyPayload struct {
	Pin string `json:"pin"`
}

type oracleResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Verified bool   `json:"verified"`
}

// Verify submits the PIN and classifies the outcome. Transport failures are
// ranked timeout > connection refused > upstream error; oracle responses that
// blame the PIN itself (wrong value, bad format) are user-facing outcomes,
// not service failures. On timeout the call is abandoned with no state left
// pinned.
func (v *Verifier) Verify(ctx context.Context, pin string) Result {
	start := time.Now()
	result := v.call(ctx, pin)
	metrics.PinOracleCallDuration.Observe(time.Since(start).Seconds())
	metrics.PinOracleCallsTotal.WithLabelValues(outcomeLabel(result)).Inc()
	return result
}

func (v *Verifier) call(ctx context.Context, pin string) Result {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	body, err := json.Marshal(verifyPayload{Pin: pin})
	if err != nil {
		return Result{Kind: KindUpstreamError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: KindUpstreamError}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return v.classifyTransportError(err)
	}
	defer resp.Body.Close()

	var oracle oracleResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&oracle); decodeErr != nil {
		v.logger.Warn("PIN oracle returned undecodable body", "status", resp.StatusCode)
		return Result{Kind: KindUpstreamError, HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && oracle.Success {
		return Result{Verified: true, HTTPStatus: resp.StatusCode}
	}

	switch oracle.Code {
	case oracleCodeInvalidPin:
		return Result{Kind: KindInvalidPin, HTTPStatus: resp.StatusCode}
	case oracleCodeInvalidFormat, oracleCodePinRequired:
		return Result{Kind: KindInvalidFormat, HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return Result{Kind: KindInvalidPin, HTTPStatus: resp.StatusCode}
	}

	return Result{Kind: KindUpstreamError, HTTPStatus: resp.StatusCode}
}

// classifyTransportError ranks transport failures: timeout first, then
// connection refused, everything else as an upstream failure.
func (v *Verifier) classifyTransportError(err error) Result {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Kind: KindTimeout}
	case errors.As(err, &netErr) && netErr.Timeout():
		return Result{Kind: KindTimeout}
	case errors.Is(err, syscall.ECONNREFUSED):
		return Result{Kind: KindConnectionRefused}
	}
	v.logger.Warn("PIN oracle transport error", "error", err)
	return Result{Kind: KindUpstreamError}
}

func outcomeLabel(r Result) string {
	if r.Verified {
		return "success"
	}
	return string(r.Kind)
}
