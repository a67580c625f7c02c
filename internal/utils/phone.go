package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized into a
// Saudi mobile number.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone canonicalizes a Saudi mobile number to +9665XXXXXXXX form.
// Accepted inputs: 05XXXXXXXX, 5XXXXXXXX, 9665XXXXXXXX, +9665XXXXXXXX and
// 009665XXXXXXXX, with spaces and dashes ignored.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", ErrInvalidPhone
	}

	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimPrefix(cleaned, "00")

	switch {
	case strings.HasPrefix(cleaned, "9665") && len(cleaned) == 12:
		// already canonical minus the plus
	case strings.HasPrefix(cleaned, "05") && len(cleaned) == 10:
		cleaned = "966" + cleaned[1:]
	case strings.HasPrefix(cleaned, "5") && len(cleaned) == 9:
		cleaned = "966" + cleaned
	default:
		return "", ErrInvalidPhone
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	return "+" + cleaned, nil
}

// IsNumericCode reports whether s consists of exactly n ASCII digits.
func IsNumericCode(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
