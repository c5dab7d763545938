package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AuditRepository persists append-only attempt records. Inserts are single
// row writes; no transaction is needed.
type AuditRepository interface {
	InsertLoginAttempt(ctx context.Context, attempt *LoginAttempt) error
	InsertPinAttempt(ctx context.Context, attempt *PinAttempt) error
	ListLoginAttempts(ctx context.Context, userID int64, limit int) ([]LoginAttempt, error)
}

// auditRepository implements AuditRepository using PostgreSQL via sqlx
type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository instance
func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

// InsertLoginAttempt appends one login attempt record.
func (r *auditRepository) InsertLoginAttempt(ctx context.Context, attempt *LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (user_id, ip_address, user_agent, outcome, failure_reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, attempted_at
	`

	return r.db.QueryRowxContext(ctx, query,
		attempt.UserID,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Outcome,
		attempt.FailureReason,
	).Scan(&attempt.ID, &attempt.AttemptedAt)
}

// InsertPinAttempt appends one PIN verification attempt record.
func (r *auditRepository) InsertPinAttempt(ctx context.Context, attempt *PinAttempt) error {
	query := `
		INSERT INTO pin_attempts (user_id, ip_address, outcome, failure_reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, attempted_at
	`

	return r.db.QueryRowxContext(ctx, query,
		attempt.UserID,
		attempt.IPAddress,
		attempt.Outcome,
		attempt.FailureReason,
	).Scan(&attempt.ID, &attempt.AttemptedAt)
}

// ListLoginAttempts returns a user's login attempts, most recent first.
func (r *auditRepository) ListLoginAttempts(ctx context.Context, userID int64, limit int) ([]LoginAttempt, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, outcome, failure_reason, attempted_at
		FROM login_attempts
		WHERE user_id = $1
		ORDER BY attempted_at DESC
		LIMIT $2
	`

	attempts := []LoginAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, userID, limit); err != nil {
		return nil, err
	}

	return attempts, nil
}
