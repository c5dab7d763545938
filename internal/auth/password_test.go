package auth

import (
	"testing"

	"pgregory.net/rapid"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		password := rapid.StringMatching(`[a-zA-Z0-9!@#$%^&*]{6,32}`).Draw(t, "password")

		hasher := NewPasswordHasher(4) // min cost keeps the property test fast
		hash, err := hasher.Hash(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}

		if hash == password {
			t.Fatal("hash must not equal the plaintext password")
		}

		if err := hasher.Verify(password, hash); err != nil {
			t.Errorf("correct password rejected: %v", err)
		}

		if err := hasher.Verify(password+"x", hash); err == nil {
			t.Error("wrong password accepted")
		}
	})
}

func TestPasswordHashCost(t *testing.T) {
	hasher := NewPasswordHasher(DefaultBcryptCost)
	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	cost, err := Cost(hash)
	if err != nil {
		t.Fatalf("failed to read cost: %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Errorf("expected cost %d, got %d", DefaultBcryptCost, cost)
	}
}

func TestPasswordHasherRejectsBadCost(t *testing.T) {
	for _, cost := range []int{-1, 0, 3, 32, 100} {
		hasher := NewPasswordHasher(cost)
		if hasher.cost != DefaultBcryptCost {
			t.Errorf("cost %d: expected fallback to %d, got %d", cost, DefaultBcryptCost, hasher.cost)
		}
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher(4)

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}
