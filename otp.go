package hmsauth

import "strings"

const otpDigits = 6

// NormalizeOTP strips every non-digit rune from raw and truncates the
// remainder to the six-digit protocol length. It mirrors what the login and
// reset forms do as the user types, so pasted codes with spaces or dashes
// still verify.
func NormalizeOTP(raw string) string {
	var b strings.Builder
	b.Grow(otpDigits)

	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == otpDigits {
			break
		}
	}

	return b.String()
}

func validOTP(otp string) bool {
	if len(otp) != otpDigits {
		return false
	}
	for i := 0; i < len(otp); i++ {
		if otp[i] < '0' || otp[i] > '9' {
			return false
		}
	}
	return true
}
