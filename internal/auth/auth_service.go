package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arkanhendra/pinlogin/internal/metrics"
	"github.com/arkanhendra/pinlogin/internal/repository"
)

// Auth service errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// Error codes for API responses
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAuthTokenMissing   = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid   = "AUTH_TOKEN_INVALID"
	CodeAuthTokenExpired   = "AUTH_TOKEN_EXPIRED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
)

// Audit failure reasons. The external response never distinguishes these; the
// audit trail does.
const (
	ReasonUserNotFound    = "User not found"
	ReasonInvalidPassword = "Invalid password"
	ReasonTokenFailure    = "Token generation failed"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents the user data in responses
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuditRecorder is the non-critical side-effect contract the pipeline depends
// on: calls always succeed from the caller's perspective.
type AuditRecorder interface {
	RecordLogin(ctx context.Context, userID int64, ip, userAgent string, outcome repository.AttemptOutcome, reason string)
	LoginHistory(ctx context.Context, userID int64, limit int) []repository.LoginAttempt
}

// NameSanitizer strips markup from user-supplied display names.
type NameSanitizer interface {
	Sanitize(s string) string
}

// AuthService orchestrates the login and registration pipelines.
type AuthService struct {
	userRepo     repository.UserRepository
	hasher       *PasswordHasher
	tokenService *TokenService
	recorder     AuditRecorder
	names        NameSanitizer
	logger       *slog.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *PasswordHasher,
	tokenService *TokenService,
	recorder AuditRecorder,
	names NameSanitizer,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		recorder:     recorder,
		names:        names,
		logger:       logger,
	}
}

// Login authenticates a user and returns a signed token. Every attempt is
// audited, including failures. Unknown-user and wrong-password failures both
// collapse to ErrInvalidCredentials so the response cannot be used to probe
// account existence; the audit reason keeps them distinguishable.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// UserID 0 preserves attacker-IP visibility for unknown usernames.
			s.recorder.RecordLogin(ctx, 0, ipAddress, userAgent, repository.OutcomeFailed, ReasonUserNotFound)
			metrics.LoginAttemptsTotal.WithLabelValues(string(repository.OutcomeFailed)).Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(req.Password, user.PasswordHash); err != nil {
		s.recorder.RecordLogin(ctx, user.ID, ipAddress, userAgent, repository.OutcomeFailed, ReasonInvalidPassword)
		metrics.LoginAttemptsTotal.WithLabelValues(string(repository.OutcomeFailed)).Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Issue(user.ID, user.Username)
	if err != nil {
		s.recorder.RecordLogin(ctx, user.ID, ipAddress, userAgent, repository.OutcomeFailed, ReasonTokenFailure)
		metrics.LoginAttemptsTotal.WithLabelValues(string(repository.OutcomeFailed)).Inc()
		return nil, err
	}

	s.recorder.RecordLogin(ctx, user.ID, ipAddress, userAgent, repository.OutcomeSuccess, "")
	metrics.LoginAttemptsTotal.WithLabelValues(string(repository.OutcomeSuccess)).Inc()

	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

// Register creates a new user account and returns a signed token. Duplicate
// identity checks run against active accounts only.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if s.names != nil {
		fullName = s.names.Sanitize(fullName)
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The existence checks above race with concurrent registrations; the
		// unique indexes are authoritative.
		switch {
		case errors.Is(err, repository.ErrUsernameAlreadyUsed):
			return nil, ErrUsernameExists
		case errors.Is(err, repository.ErrEmailAlreadyUsed):
			return nil, ErrEmailExists
		}
		return nil, err
	}

	token, err := s.tokenService.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

// GetProfile returns the public fields of the authenticated user.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// GetLoginHistory returns the user's most recent login attempts, newest
// first. Read failures yield an empty list, never an error.
func (s *AuthService) GetLoginHistory(ctx context.Context, userID int64, limit int) []repository.LoginAttempt {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.recorder.LoginHistory(ctx, userID, limit)
}
