// Package normalize canonicalizes raw export rows into core.Record values.
// Everything downstream (matching, the masters, the KPIs) assumes these
// cleaning rules already ran, so they live in exactly one place.
package normalize

import (
	"regexp"
	"strings"
)

// Reasons recorded when a row cannot carry an email identity.
const (
	ReasonEmailMissing = "email_missing"
	ReasonEmailInvalid = "email_invalid_format"
)

var (
	zipDigits   = regexp.MustCompile(`\d{5}`)
	excelQuote  = regexp.MustCompile(`^="?|"$`)
	innerSpaces = regexp.MustCompile(`\s+`)
)

// CleanEmail standardizes an email for matching: trim, lowercase, and
// strip interior whitespace. Blank input yields "".
func CleanEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return innerSpaces.ReplaceAllString(s, "")
}

// ValidEmail applies the practical validation the exports need: exactly
// one '@', a non-empty local part, and a domain with an interior dot.
func ValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// CleanName collapses runs of whitespace and trims.
func CleanName(s string) string {
	return strings.TrimSpace(innerSpaces.ReplaceAllString(s, " "))
}

// CleanZip normalizes a raw ZIP to a 5-digit string. It strips Excel
// ="..." wrappers and ZIP+4 suffixes. When no 5-digit group exists the raw
// trimmed value is returned with ok=false; the record is kept but excluded
// from geo bucketing.
func CleanZip(raw string) (zip string, ok bool) {
	s := strings.TrimSpace(excelQuote.ReplaceAllString(strings.TrimSpace(raw), ""))
	if m := zipDigits.FindString(s); m != "" {
		return m, true
	}
	return s, false
}

var attendedValues = map[string]bool{
	"yes":            true,
	"y":              true,
	"true":           true,
	"1":              true,
	"attended":       true,
	"joined":         true,
	"no":             false,
	"n":              false,
	"false":          false,
	"0":              false,
	"no-show":        false,
	"no show":        false,
	"did not attend": false,
}

// ParseAttended collapses the export's join indicator to a bool. Values
// outside the known vocabulary are malformed, not guessed at.
func ParseAttended(s string) (bool, bool) {
	v, ok := attendedValues[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}
