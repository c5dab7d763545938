package pin

import (
	"context"
	"errors"
	"testing"

	"github.com/arkanhendra/pinlogin/internal/repository"
)

// stubVerifier implements PinVerifier with a canned result
type stubVerifier struct {
	result Result
}

func (s stubVerifier) Verify(ctx context.Context, pin string) Result {
	return s.result
}

// recordedPinAttempt captures one RecordPinAttempt call
type recordedPinAttempt struct {
	userID  int64
	ip      string
	outcome repository.AttemptOutcome
	reason  string
}

// mockPinRecorder implements AuditRecorder for testing
type mockPinRecorder struct {
	attempts []recordedPinAttempt
}

func (m *mockPinRecorder) RecordPinAttempt(ctx context.Context, userID int64, ip string, outcome repository.AttemptOutcome, reason string) {
	m.attempts = append(m.attempts, recordedPinAttempt{userID: userID, ip: ip, outcome: outcome, reason: reason})
}

func TestVerifyPinSuccess(t *testing.T) {
	recorder := &mockPinRecorder{}
	svc := NewService(stubVerifier{Result{Verified: true}}, recorder, nil)

	if err := svc.VerifyPin(context.Background(), 42, "203.0.113.5", "123456"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(recorder.attempts) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(recorder.attempts))
	}
	rec := recorder.attempts[0]
	if rec.outcome != repository.OutcomeSuccess || rec.reason != "" {
		t.Errorf("unexpected audit record: %+v", rec)
	}
	if rec.userID != 42 || rec.ip != "203.0.113.5" {
		t.Errorf("audit record missing identity: %+v", rec)
	}
}

func TestVerifyPinFailureClassification(t *testing.T) {
	cases := []struct {
		name       string
		result     Result
		wantErr    error
		wantReason string
	}{
		{"invalid pin", Result{Kind: KindInvalidPin, HTTPStatus: 401}, ErrPinInvalid, ReasonInvalidPin},
		{"invalid format", Result{Kind: KindInvalidFormat, HTTPStatus: 400}, ErrPinInvalid, ReasonInvalidFormat},
		{"timeout", Result{Kind: KindTimeout}, ErrServiceUnavailable, ReasonTimeout},
		{"connection refused", Result{Kind: KindConnectionRefused}, ErrServiceUnavailable, ReasonConnectionRefused},
		{"upstream 502", Result{Kind: KindUpstreamError, HTTPStatus: 502}, ErrServiceUnavailable, "API error: 502"},
		{"upstream no status", Result{Kind: KindUpstreamError}, ErrServiceUnavailable, ReasonExternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &mockPinRecorder{}
			svc := NewService(stubVerifier{tc.result}, recorder, nil)

			err := svc.VerifyPin(context.Background(), 42, "203.0.113.5", "000000")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if len(recorder.attempts) != 1 {
				t.Fatalf("expected 1 audit record, got %d", len(recorder.attempts))
			}
			rec := recorder.attempts[0]
			if rec.outcome != repository.OutcomeFailed {
				t.Errorf("expected failed outcome, got %q", rec.outcome)
			}
			if rec.reason != tc.wantReason {
				t.Errorf("expected reason %q, got %q", tc.wantReason, rec.reason)
			}
		})
	}
}
