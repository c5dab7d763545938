package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification errors
var (
	// ErrTokenExpired means the token was well formed but its expiry passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers structural and signature failures, including
	// tokens signed with a rotated or foreign key.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenInternal covers verification failures unrelated to the token
	// itself, such as a missing signing key.
	ErrTokenInternal = errors.New("token verification failed")
)

// Claims represents the JWT claims structure
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the decoded subject of a verified token.
type Identity struct {
	UserID   int64
	Username string
}

// TokenService issues and verifies signed bearer tokens. Issue and Verify are
// pure functions of input, key and current time; nothing is persisted.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// TokenServiceConfig holds configuration for TokenService
type TokenServiceConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		expiry: expiry,
		issuer: cfg.Issuer,
	}
}

// Issue produces a signed HS256 token binding the user identity, with
// issuance and expiry timestamps.
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInternal
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", ErrTokenInternal
	}
	return signed, nil
}

// Verify validates a token and decodes the bound identity. It fails with
// ErrTokenExpired when the expiry claim has passed, ErrTokenMalformed when
// the structure or signature is invalid, and ErrTokenInternal otherwise.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	if len(s.secret) == 0 {
		return nil, ErrTokenInternal
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	return &Identity{
		UserID:   userID,
		Username: claims.Username,
	}, nil
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
