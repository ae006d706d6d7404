package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingAmount = regexp.MustCompile(`^[0-9][0-9.,]*`)

// ParseAmount parses a money-ish string with ambiguous separators.
// Both comma and dot present means the comma is a thousands separator and is
// stripped; a lone comma is a decimal point. Trailing non-numeric text
// ("20000 EUR") is ignored.
func ParseAmount(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	if hasComma && hasDot {
		s = strings.ReplaceAll(s, ",", "")
	} else if hasComma {
		s = strings.ReplaceAll(s, ",", ".")
	}

	token := leadingAmount.FindString(s)
	if token == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// RoundHalfUp2 rounds to two decimal places, halves away from zero being
// rounded up.
func RoundHalfUp2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// FormatAmount renders a price with exactly two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
