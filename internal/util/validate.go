package util

import (
	"html"
	"regexp"
	"strings"
)

// MinPasswordLength is the minimum accepted password size at registration.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s is a plausible E.164-style phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// SanitizeInput escapes HTML/script-like characters in free-text fields
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}
