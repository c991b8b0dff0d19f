// Package cryptox wraps the password and shared-secret checks of the admin
// surface.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// HashPassword returns a bcrypt hash of password at the default cost.
func HashPassword(password []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword compares password with a bcrypt hash. Any mismatch, including
// a malformed hash, yields ErrMismatch.
func CheckPassword(hash string, password []byte) error {
	if hash == "" {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), password); err != nil {
		return ErrMismatch
	}
	return nil
}

// MakeVerifier returns the SHA-256 digest of secret.
func MakeVerifier(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}

// EqualSecret compares two secrets in constant time. Hashing first keeps the
// comparison independent of their lengths.
func EqualSecret(a, b string) bool {
	return subtle.ConstantTimeCompare(MakeVerifier([]byte(a)), MakeVerifier([]byte(b))) == 1
}
