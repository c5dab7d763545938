package repository

import (
	"time"
)

// User represents a user account in the database. Accounts are never hard
// deleted, only deactivated; deactivated accounts are invisible to lookups.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// AttemptOutcome is the recorded result of a security-relevant attempt.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailed  AttemptOutcome = "failed"
)

// LoginAttempt is an append-only audit record of a login attempt.
// UserID 0 marks an attempt against a username that does not exist.
type LoginAttempt struct {
	ID            int64          `db:"id" json:"-"`
	UserID        int64          `db:"user_id" json:"-"`
	IPAddress     string         `db:"ip_address" json:"ip_address"`
	UserAgent     string         `db:"user_agent" json:"user_agent"`
	Outcome       AttemptOutcome `db:"outcome" json:"status"`
	FailureReason *string        `db:"failure_reason" json:"failure_reason,omitempty"`
	AttemptedAt   time.Time      `db:"attempted_at" json:"login_time"`
}

// PinAttempt is an append-only audit record of a PIN verification attempt.
type PinAttempt struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	IPAddress     string         `db:"ip_address"`
	Outcome       AttemptOutcome `db:"outcome"`
	FailureReason *string        `db:"failure_reason"`
	AttemptedAt   time.Time      `db:"attempted_at"`
}
