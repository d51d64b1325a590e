// Package common defines shared constants and sentinel errors used across
// walletkeeper components. Callers should use errors.Is to match the
// sentinels and errors.As to extract typed errors such as ValidationError.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Duplicate errors. The storage layer's unique constraints are the
	// authoritative arbiter under concurrent registration; the
	// application-level pre-checks surface the same values.
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateUsername      = errors.New("username already registered")
	ErrDuplicateWalletAddress = errors.New("wallet address already registered")
	ErrDuplicateIdentity      = errors.New("identity already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential failures are deliberately uniform so that responses do
	// not reveal whether the username exists.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Crypto errors. A decryption failure is fatal to the requested
	// operation and is never substituted with a fallback value.
	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")
)

// ValidationError reports a malformed input value and names the offending
// field so the caller can point the user at it.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}
