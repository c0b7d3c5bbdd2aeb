package util

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// ValidateUsername: 3-32 letters, digits, underscore, dot or dash.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordBytes)
	}
	return nil
}

// ValidateRequired reports the first empty (after trimming) field by label.
func ValidateRequired(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return fmt.Errorf("%s is required", f[0])
		}
	}
	return nil
}

// ValidateEmail accepts an empty value; the contact address is optional.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email address is not valid")
	}
	return nil
}

// ValidateCategory checks membership when allowed is non-empty.
func ValidateCategory(category string, allowed []string) error {
	if category == "" {
		return fmt.Errorf("category is required")
	}
	if utf8.RuneCountInString(category) > 64 {
		return fmt.Errorf("category too long, max 64 characters")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if a == category {
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", category)
}
