package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-service/internal/domain"
)

// MinPasswordLength is the shortest password accepted for storage.
const MinPasswordLength = 8

// bcrypt only reads the first 72 bytes of its input.
const maxPasswordBytes = 72

// CheckPassword enforces the length bounds a stored password must meet.
func CheckPassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return domain.ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return domain.ErrPasswordTooLong
	}
	return nil
}

// HashPassword checks and bcrypt-hashes a password. Costs outside bcrypt's
// range fall back to the default.
func HashPassword(password string, cost int) (string, error) {
	if err := CheckPassword(password); err != nil {
		return "", err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
