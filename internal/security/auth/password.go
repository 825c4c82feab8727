package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is a fixed work factor, roughly hundreds of milliseconds per
// hash. Tunable here, never derived from input.
const bcryptCost = 10

// PasswordHasher wraps bcrypt hashing and verification. Plaintext passwords
// and hashes are never logged or returned to callers.
type PasswordHasher struct{}

// NewPasswordHasher creates a password hasher
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash derives a salted one-way hash of the plaintext
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. A malformed hash
// verifies as false rather than erroring; bcrypt's comparison is
// constant-time over the digest.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
