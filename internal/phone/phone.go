// Package phone canonicalizes raw phone number input into the single
// international form used as the unique lookup key for phone-based identity.
package phone

import "strings"

const (
	// CountryPrefix is the international prefix for Spanish numbers.
	CountryPrefix = "+34"

	// countryCode is the bare country code without the plus sign.
	countryCode = "34"
)

// Normalize maps raw phone input to its canonical international form.
// It is pure and total: malformed input is returned stripped but otherwise
// unchanged, never an error. The same physical number always normalizes to
// the same value regardless of how it was typed, so Normalize must run
// before every phone lookup and every phone-keyed insert.
//
// Rules, applied to the input reduced to digits and a leading "+":
//   - already carries the +34 prefix: returned unchanged
//   - starts with the bare country code 34: "+" is prepended
//   - starts with a Spanish mobile trunk digit (6 or 7): "+34" is prepended
//   - anything else: returned as stripped
func Normalize(raw string) string {
	stripped := strip(raw)

	if strings.HasPrefix(stripped, CountryPrefix) {
		return stripped
	}

	if strings.HasPrefix(stripped, countryCode) {
		return "+" + stripped
	}

	if strings.HasPrefix(stripped, "6") || strings.HasPrefix(stripped, "7") {
		return CountryPrefix + stripped
	}

	return stripped
}

// strip removes every character except digits and a leading plus sign.
func strip(raw string) string {
	var b strings.Builder

	b.Grow(len(raw))

	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}
