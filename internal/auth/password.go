// Package auth covers credential hashing and session tokens. Sessions are
// stateless signed JWTs carried in an HTTP-only cookie; nothing here touches
// the database.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown accounts and wrong
// passwords so callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid email or password")

// HashPassword derives a bcrypt hash at the given cost. A cost of zero
// selects the library default.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against a stored hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
