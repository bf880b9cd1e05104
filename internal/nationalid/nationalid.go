// Package nationalid validates Norwegian national identifiers
// (fødselsnummer and synthetic test identifiers) using the two-pass
// weighted mod-11 control digit scheme.
package nationalid

import "time"

// Positional weights for the two control digits, applied left to right over
// the 9- and 10-digit prefixes of the identifier.
var (
	weightsFirstControl  = []int{3, 7, 6, 1, 8, 9, 4, 5, 2}
	weightsSecondControl = []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
)

const birthDateLayout = "020106"

// Valid reports whether s is a structurally valid national identifier:
// exactly 11 digits, the first six parse as a birth date, and both control
// digits match their mod-11 checksums. It is pure and never panics.
func Valid(s string) bool {
	if len(s) != 11 {
		return false
	}
	digits := make([]int, 11)
	for i := 0; i < 11; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
	}
	if !validBirthDate(s) {
		return false
	}
	first, ok := controlDigit(digits[:9], weightsFirstControl)
	if !ok || first != digits[9] {
		return false
	}
	second, ok := controlDigit(digits[:10], weightsSecondControl)
	if !ok || second != digits[10] {
		return false
	}
	return true
}

// controlDigit computes the mod-11 control digit for the given digit prefix.
// Remainder 0 maps to digit 0, remainder 1 has no valid control digit, and
// any other remainder r maps to 11-r.
func controlDigit(digits, weights []int) (int, bool) {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	switch r := sum % 11; r {
	case 0:
		return 0, true
	case 1:
		return 0, false
	default:
		return 11 - r, true
	}
}

// validBirthDate checks the ddMMyy prefix. Synthetic identifiers shift the
// leading day digit up by 4, so 4-7 is reduced by 4 before parsing.
func validBirthDate(s string) bool {
	day := []byte{s[0], s[1]}
	if day[0] >= '4' && day[0] <= '7' {
		day[0] -= 4
	}
	_, err := time.Parse(birthDateLayout, string(day)+s[2:6])
	return err == nil
}
