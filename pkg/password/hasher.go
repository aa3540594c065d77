// Package password provides bcrypt hashing for local authentication.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Errors for password operations.
var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrPasswordMismatch = errors.New("password does not match")
)

// DefaultCost balances bcrypt work factor against login latency.
const DefaultCost = 12

// MinLength is the minimum accepted password length.
const MinLength = 8

// Hasher hashes and verifies passwords.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside bcrypt's range fall back to
// DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a bcrypt hash after basic policy checks.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrPasswordTooShort
	}
	if len(plain) > 72 { // bcrypt truncates beyond 72 bytes
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext candidate with a stored hash.
func (h *Hasher) Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
