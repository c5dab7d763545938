// Package audit records the outcome of security-relevant attempts. Writes
// are best-effort: a failed insert is logged and swallowed so observability
// problems never block a login or PIN verification.
package audit

import (
	"context"
	"log/slog"

	"github.com/arkanhendra/pinlogin/internal/repository"
)

// Recorder persists attempt records synchronously within the request's
// lifetime. It never returns an error to the caller.
type Recorder struct {
	repo   repository.AuditRepository
	logger *slog.Logger
}

// NewRecorder creates a new Recorder instance
func NewRecorder(repo repository.AuditRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// RecordLogin appends a login attempt record. userID 0 is the sentinel for
// attempts against usernames that do not exist.
func (r *Recorder) RecordLogin(ctx context.Context, userID int64, ip, userAgent string, outcome repository.AttemptOutcome, reason string) {
	attempt := &repository.LoginAttempt{
		UserID:        userID,
		IPAddress:     ip,
		UserAgent:     userAgent,
		Outcome:       outcome,
		FailureReason: optional(reason),
	}

	if err := r.repo.InsertLoginAttempt(ctx, attempt); err != nil {
		r.logger.Error("Failed to record login attempt",
			"user_id", userID,
			"ip_address", ip,
			"outcome", outcome,
			"error", err,
		)
	}
}

// RecordPinAttempt appends a PIN verification attempt record.
func (r *Recorder) RecordPinAttempt(ctx context.Context, userID int64, ip string, outcome repository.AttemptOutcome, reason string) {
	attempt := &repository.PinAttempt{
		UserID:        userID,
		IPAddress:     ip,
		Outcome:       outcome,
		FailureReason: optional(reason),
	}

	if err := r.repo.InsertPinAttempt(ctx, attempt); err != nil {
		r.logger.Error("Failed to record PIN attempt",
			"user_id", userID,
			"ip_address", ip,
			"outcome", outcome,
			"error", err,
		)
	}
}

// LoginHistory returns a user's recent login attempts, most recent first.
// Read failures yield an empty slice.
func (r *Recorder) LoginHistory(ctx context.Context, userID int64, limit int) []repository.LoginAttempt {
	attempts, err := r.repo.ListLoginAttempts(ctx, userID, limit)
	if err != nil {
		r.logger.Error("Failed to read login history", "user_id", userID, "error", err)
		return []repository.LoginAttempt{}
	}
	return attempts
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
