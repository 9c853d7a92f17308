// Package cnpj normalizes and validates Brazilian CNPJ identifiers
// (14-digit national registry numbers for legal entities).
package cnpj

import "strings"

// Length is the digit count of a valid CNPJ.
const Length = 14

// Normalize strips every non-digit rune from raw and reports whether the
// remaining string is a well-formed CNPJ (exactly 14 digits).
// Empty or nil-like input is simply not ok, never an error.
// Normalize is idempotent: Normalize(n) of a normalized n returns n.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != Length {
		return digits, false
	}
	return digits, true
}

// Format renders a normalized CNPJ as 00.000.000/0000-00.
// Input that is not exactly 14 digits is returned unchanged.
func Format(cnpj string) string {
	if len(cnpj) != Length {
		return cnpj
	}
	return cnpj[0:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:14]
}

var (
	firstDigitWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondDigitWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidCheckDigits verifies the two mod-11 verification digits of a
// normalized CNPJ. It returns false for anything that is not 14 digits.
func ValidCheckDigits(cnpj string) bool {
	if len(cnpj) != Length {
		return false
	}
	for _, r := range cnpj {
		if r < '0' || r > '9' {
			return false
		}
	}
	if checkDigit(cnpj[:12], firstDigitWeights) != int(cnpj[12]-'0') {
		return false
	}
	return checkDigit(cnpj[:13], secondDigitWeights) == int(cnpj[13]-'0')
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}
