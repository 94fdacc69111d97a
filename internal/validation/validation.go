// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	digitRegex    = regexp.MustCompile(`[0-9]`)
	specialRegex  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Indian mobile numbers: ten digits starting 6-9, optional +91 / 91 / 0 prefix.
	phoneRegex = regexp.MustCompile(`^(?:\+?91|0)?[6-9][0-9]{9}$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}

	// Check maximum length (prevent unreasonable inputs)
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if strings.ContainsAny(username[:1], "_-") || strings.ContainsAny(username[len(username)-1:], "_-") {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// NormalizePhone strips spaces and dashes from a phone number.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks that phone is a reachable Indian mobile number.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(NormalizePhone(phone)) {
		return fmt.Errorf("phone must be a valid 10 digit mobile number")
	}
	return nil
}
