// Package contact normalizes the email addresses and phone numbers that
// verification sessions are bound to, so the same person always compares equal.
package contact

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/validate"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// Normalize detects the channel of raw and returns its canonical form.
func Normalize(raw string) (string, domain.Channel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("contact is required: %w", domain.ErrBadRequest)
	}
	if strings.Contains(raw, "@") {
		email, err := NormalizeEmail(raw)
		return email, domain.ChannelEmail, err
	}
	phone, err := NormalizePhone(raw)
	return phone, domain.ChannelPhone, err
}

func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("invalid email address: %w", domain.ErrBadRequest)
	}
	return email, nil
}

// NormalizePhone keeps digits only, assumes country code 1 for ten-digit
// numbers and returns E.164 form.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		digits = "1" + digits
	}
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %w", domain.ErrBadRequest)
	}
	return "+" + digits, nil
}

// Matches reports whether confirmed (already normalized) is the same contact
// as candidate. An empty or unparseable candidate never matches.
func Matches(confirmed, candidate string) bool {
	if confirmed == "" || strings.TrimSpace(candidate) == "" {
		return false
	}
	norm, _, err := Normalize(candidate)
	if err != nil {
		return false
	}
	return norm == confirmed
}
