package clients

import (
	"fmt"
	"strings"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// NormalizeMobile strips whitespace, hyphens and parentheses from a raw
// mobile number and enforces the 10-digit format used across the registry.
func NormalizeMobile(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '\t', '-', '(', ')':
			continue
		default:
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if len(normalized) != 10 {
		return "", fmt.Errorf("%w: mobile number must be exactly 10 digits", shared.ErrInvalidInput)
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: mobile number must be exactly 10 digits", shared.ErrInvalidInput)
		}
	}
	return normalized, nil
}
