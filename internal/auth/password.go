package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past this many bytes.
const maxPasswordBytes = 72

var (
	// ErrPasswordMismatch means the password does not belong to the account.
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrPasswordTooLong  = fmt.Errorf("password longer than %d bytes", maxPasswordBytes)
)

// HashPassword hashes a signup password. A cost outside bcrypt's range falls back to the
// default cost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword checks a login attempt against the stored hash. Wrong passwords yield
// ErrPasswordMismatch; any other error means the stored hash is unusable.
func ComparePassword(hashed, plain string) error {
	if len(plain) > maxPasswordBytes {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
