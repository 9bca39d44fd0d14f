package whatsapp

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatPhoneNumber normalizes a phone number to the digits-only format
// the companion service expects. Ten-digit numbers are assumed to be
// Indian and get the 91 country code.
func FormatPhoneNumber(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case len(cleaned) == 10:
		return "91" + cleaned, nil
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "91"):
		return cleaned, nil
	case len(cleaned) >= 11:
		return cleaned, nil
	default:
		return "", fmt.Errorf("invalid phone number format: %q (provide the number with country code)", phone)
	}
}
