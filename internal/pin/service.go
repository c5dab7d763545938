package pin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/arkanhendra/pinlogin/internal/repository"
)

// PIN pipeline errors. ErrPinInvalid is a user problem (401 class) while
// ErrServiceUnavailable is an oracle problem (503 class); callers must keep
// the two distinguishable.
var (
	ErrPinInvalid         = errors.New("invalid pin")
	ErrServiceUnavailable = errors.New("pin verification service unavailable")
)

// Error codes for API responses
const (
	CodePinInvalid         = "PIN_INVALID"
	CodeServiceUnavailable = "PIN_SERVICE_UNAVAILABLE"
)

// Audit failure reasons, matching the failure classification.
const (
	ReasonInvalidPin        = "Invalid PIN"
	ReasonInvalidFormat     = "Invalid PIN format"
	ReasonTimeout           = "API timeout"
	ReasonConnectionRefused = "API connection refused"
	ReasonExternalError     = "External API error"
)

// PinVerifier is the oracle client contract.
type PinVerifier interface {
	Verify(ctx context.Context, pin string) Result
}

// AuditRecorder is the non-critical side-effect contract for PIN attempts.
type AuditRecorder interface {
	RecordPinAttempt(ctx context.Context, userID int64, ip string, outcome repository.AttemptOutcome, reason string)
}

// Service runs the PIN verification pipeline: external call, outcome
// classification, audit. Token verification has already happened in the
// middleware by the time this runs.
type Service struct {
	verifier PinVerifier
	recorder AuditRecorder
	logger   *slog.Logger
}

// NewService creates a new Service instance
func NewService(verifier PinVerifier, recorder AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		verifier: verifier,
		recorder: recorder,
		logger:   logger,
	}
}

// VerifyPin submits the PIN for the authenticated user and audits the
// outcome. The returned error separates "you are wrong" (ErrPinInvalid) from
// "the service is unavailable" (ErrServiceUnavailable).
func (s *Service) VerifyPin(ctx context.Context, userID int64, ipAddress, pin string) error {
	result := s.verifier.Verify(ctx, pin)

	if result.Verified {
		s.recorder.RecordPinAttempt(ctx, userID, ipAddress, repository.OutcomeSuccess, "")
		return nil
	}

	reason := auditReason(result)
	s.recorder.RecordPinAttempt(ctx, userID, ipAddress, repository.OutcomeFailed, reason)

	switch result.Kind {
	case KindInvalidPin, KindInvalidFormat:
		return ErrPinInvalid
	default:
		s.logger.Warn("PIN oracle unavailable",
			"user_id", userID,
			"failure_kind", string(result.Kind),
			"upstream_status", result.HTTPStatus,
		)
		return ErrServiceUnavailable
	}
}

// auditReason projects a verification result onto an audit reason string.
func auditReason(result Result) string {
	switch result.Kind {
	case KindInvalidPin:
		return ReasonInvalidPin
	case KindInvalidFormat:
		return ReasonInvalidFormat
	case KindTimeout:
		return ReasonTimeout
	case KindConnectionRefused:
		return ReasonConnectionRefused
	case KindUpstreamError:
		if result.HTTPStatus > 0 {
			return "API error: " + strconv.Itoa(result.HTTPStatus)
		}
		return ReasonExternalError
	}
	return ReasonExternalError
}
