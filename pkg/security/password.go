package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	pkgerrors "user-auth-service/pkg/errors"
)

// DefaultBcryptCost matches the cost factor used for every stored hash.
const DefaultBcryptCost = 10

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	// Hash creates a salted one-way hash from a password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash.
	// A mismatch is not an error.
	Verify(password, hash string) (bool, error)

	// VerifyDummy burns the same CPU time as Verify against a throwaway hash.
	// It is used when no stored hash exists so callers cannot be told apart by timing.
	VerifyDummy(password string)
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost  int
	dummy []byte
}

// NewBcryptHasher creates a bcrypt hasher. The cost is clamped to bcrypt's valid range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	// Errors are impossible here: the cost is in range and the input is short.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)

	return &BcryptHasher{cost: cost, dummy: dummy}
}

// Cost returns the configured bcrypt cost.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash creates a bcrypt hash from a password.
// Passwords over bcrypt's 72-byte limit are rejected with a validation error.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", pkgerrors.NewValidationError(pkgerrors.FieldError{
			Field:   "password",
			Message: "password must be at most 72 bytes",
		})
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks if a password matches a bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyDummy compares password against a fixed hash and discards the result.
func (h *BcryptHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

var _ PasswordHasher = (*BcryptHasher)(nil)
