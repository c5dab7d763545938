package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameAlreadyUsed = errors.New("username already exists")
	ErrEmailAlreadyUsed    = errors.New("email already exists")
)

// UserRepository defines the interface for user data access. Every lookup is
// restricted to active accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Deactivate(ctx context.Context, id int64) error
}

// userRepository implements UserRepository using PostgreSQL
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Create inserts a new user. Uniqueness of username and email among active
// accounts is enforced by partial unique indexes; violations surface as
// ErrUsernameAlreadyUsed / ErrEmailAlreadyUsed.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, is_active)
		VALUES ($1, LOWER($2), $3, $4, TRUE)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		switch {
		case strings.Contains(err.Error(), "idx_users_username_active"):
			return ErrUsernameAlreadyUsed
		case strings.Contains(err.Error(), "idx_users_email_active"):
			return ErrEmailAlreadyUsed
		}
		return err
	}

	user.IsActive = true
	return nil
}

// GetByID retrieves an active user by ID. The password hash is not selected;
// this lookup backs profile views only.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, email, full_name, is_active, created_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`

	user := &User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.IsActive,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByUsername retrieves an active user by username, including the stored
// password hash for credential verification.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = TRUE
	`
	return r.getOne(ctx, query, username)
}

// GetByEmail retrieves an active user by email address (case-insensitive).
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, full_name, is_active, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1) AND is_active = TRUE
	`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.IsActive,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// Deactivate marks a user inactive. The row is kept; audit history must stay
// attributable.
func (r *userRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_active = FALSE WHERE id = $1 AND is_active = TRUE`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
