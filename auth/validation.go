package auth

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/clipstream/authcore/users"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// normalizeHandle lowercases and trims a handle so lookups are
// case-insensitive.
func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateHandle(handle string) error {
	if handle == "" {
		return validationError("handle is required")
	}
	if !handlePattern.MatchString(handle) {
		return validationError("handle must be 3-30 characters of lowercase letters, digits, or underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return validationError("email is not a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	if err := users.ValidatePasswordStrength(password); err != nil {
		return validationError(err.Error())
	}
	return nil
}

func validateRegistration(req RegisterRequest) error {
	if err := validateHandle(req.Handle); err != nil {
		return err
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if req.FullName == "" {
		return validationError("full name is required")
	}
	return validatePassword(req.Password)
}
