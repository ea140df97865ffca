// Package gate checks the shared admin password. The configured secret is
// stored as a digest: either a SHA-256 hex string or a bcrypt hash.
package gate

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the password does not match.
var ErrInvalidPassword = errors.New("gate: invalid password")

// Checker verifies passwords against a single configured digest.
type Checker struct {
	hash     string
	isBcrypt bool
}

// New returns a Checker for hash. A hash starting with "$2" is treated as
// bcrypt, anything else must be a 64-character SHA-256 hex digest.
func New(hash string) (*Checker, error) {
	hash = strings.TrimSpace(hash)
	if isBcrypt(hash) {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("gate: bad bcrypt hash: %w", err)
		}
		return &Checker{hash: hash, isBcrypt: true}, nil
	}
	if len(hash) != sha256.Size*2 {
		return nil, fmt.Errorf("gate: hash must be a SHA-256 hex digest or bcrypt hash")
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return nil, fmt.Errorf("gate: bad hex digest: %w", err)
	}
	return &Checker{hash: strings.ToLower(hash)}, nil
}

// Check returns nil when password matches, ErrInvalidPassword otherwise.
func (c *Checker) Check(password string) error {
	if c.isBcrypt {
		if err := bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	sum := SHA256Hex(password)
	if subtle.ConstantTimeCompare([]byte(sum), []byte(c.hash)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// SHA256Hex returns the lowercase hex SHA-256 digest of password.
func SHA256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// BcryptHash returns a bcrypt hash of password at the default cost.
func BcryptHash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("gate: bcrypt: %w", err)
	}
	return string(h), nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}
