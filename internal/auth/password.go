package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the work factor used for new password hashes.
	DefaultBcryptCost = 10
)

// PasswordHasher hashes and verifies passwords with bcrypt. The cost factor
// is fixed at construction; hashes are computed once at registration and only
// ever re-derived for comparison.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the given cost. Costs
// outside bcrypt's accepted range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash creates a salted bcrypt hash of the password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext password with its stored hash.
// Returns nil if they match, an error otherwise.
func (h *PasswordHasher) Verify(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Cost extracts the cost factor from a bcrypt hash.
func Cost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}
