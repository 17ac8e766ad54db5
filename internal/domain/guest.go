package domain

import (
	"fmt"
	"strings"
)

// Guests are deduplicated within a tenant by normalized mobile number.
// Profiles are updated in place on repeat visits; there is no soft delete
// or history.
type Guest struct {
	ID          int64
	TenantID    int64
	FullName    string
	Mobile      string
	Email       string
	CompanyName string
	GSTNumber   string
	Address     string
	IDType      string
	IDNumber    string
	City        string
	State       string
}

// MinMobileDigits is the minimum significant digits for a contact number.
const MinMobileDigits = 10

// NormalizeMobile strips everything but digits and rejects numbers shorter
// than MinMobileDigits.
func NormalizeMobile(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < MinMobileDigits {
		return "", fmt.Errorf("mobile must have at least %d digits: %w", MinMobileDigits, ErrValidation)
	}
	return digits, nil
}
