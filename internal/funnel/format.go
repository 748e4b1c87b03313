package funnel

import "strings"

// RawPhoneNumber returns only the digits of phone.
func RawPhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneNumber renders the digits of phone as (XXX) XXX-XXXX,
// progressively for partial input. Fewer than four digits are returned bare
// and digits past ten are dropped.
func FormatPhoneNumber(phone string) string {
	digits := RawPhoneNumber(phone)
	if len(digits) > 10 {
		digits = digits[:10]
	}
	switch {
	case len(digits) == 0:
		return ""
	case len(digits) < 4:
		return digits
	case len(digits) <= 6:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
}

// IsValidPhoneNumber reports whether phone holds exactly ten digits.
func IsValidPhoneNumber(phone string) bool {
	return len(RawPhoneNumber(phone)) == 10
}
