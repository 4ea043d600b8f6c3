package utils

import "strings"

// NormalizePhone reduces a phone number to a country-coded digit string.
// Danish mobile numbers are eight digits; a bare eight-digit number gets
// the 45 country code prefixed.  Numbers already carrying the code pass
// through, anything else is returned as digits unchanged.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "45"):
		return digits
	case len(digits) == 8:
		return "45" + digits
	default:
		return digits
	}
}
