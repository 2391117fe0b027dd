package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is zero or out of range.
const DefaultBcryptCost = 10

var ErrEmptyPassword = errors.New("empty password")

func HashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// VerifyPassword reports whether password matches hash. It never returns an
// error to the caller; malformed input simply fails the check.
func VerifyPassword(password string, hash []byte) bool {
	if password == "" || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
