// Package core holds the mortgage domain types and the parsing helpers for
// values that cross the persistence boundary.
//
// Annual rates are stored as decimal-fraction strings ("0.065" for 6.5%);
// this file converts between that representation and float64.
package core

import (
	"strconv"
	"strings"
)

// ParseRate converts a stored decimal-fraction string to a float64 rate.
//
// It accepts both dot (0.065) and comma (0,065) decimal separators and
// requires the result to be in [0, 1). Explicit signs are rejected.
//
// Examples:
//
//	ParseRate("0.065") -> 0.065, nil
//	ParseRate("0,065") -> 0.065, nil
//	ParseRate("6.5")   -> error (a percentage, not a fraction)
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidRate
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidRate
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidRate
	}
	if rate < 0 || rate >= 1 {
		return 0, ErrInvalidRate
	}
	return rate, nil
}

// FormatRate renders a rate back to its storage form with no trailing
// zeros, so ParseRate(FormatRate(r)) == r.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
