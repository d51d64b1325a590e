package models

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// 3-20 chars, starts with a letter, letters/digits/underscore.
	usernameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,19}$`)

	addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

	passwordSpecials = `!@#$%^&*(),.?":{}|<>`
)

// NormalizeEmail validates the email format and returns it lowercased.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", common.NewValidationError("email", "is required")
	}
	if !emailRe.MatchString(email) {
		return "", common.NewValidationError("email", "invalid format")
	}
	return strings.ToLower(email), nil
}

// NormalizeUsername validates the username format and returns it lowercased.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if !usernameRe.MatchString(username) {
		return "", common.NewValidationError("username",
			"must be 3-20 characters, start with a letter, and contain only letters, numbers, and underscores")
	}
	return strings.ToLower(username), nil
}

// NormalizeAddress validates a 0x+40-hex chain address and returns it
// lowercased so comparisons stay case-insensitive.
func NormalizeAddress(address string) (string, error) {
	if !addressRe.MatchString(address) {
		return "", common.NewValidationError("address", "invalid address format")
	}
	return strings.ToLower(address), nil
}

// ValidatePassword enforces the password strength policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit, and a
// special character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return common.NewValidationError("password", "must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return common.NewValidationError("password", "must contain at least one uppercase letter")
	case !hasLower:
		return common.NewValidationError("password", "must contain at least one lowercase letter")
	case !hasDigit:
		return common.NewValidationError("password", "must contain at least one number")
	case !hasSpecial:
		return common.NewValidationError("password", "must contain at least one special character")
	}

	return nil
}
