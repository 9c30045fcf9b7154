// Package seat converts and validates airline seat identifiers.
//
// Two notations appear on the wire: the canonical letter-first form used by
// the seat map ("A12") and the number-first form some call analyses report
// ("12A"). All seat values stored or broadcast by the server are canonical.
package seat

import "regexp"

// Kind classifies a seat string after parsing.
type Kind int

const (
	// Canonical is the letter-first form, e.g. "A12".
	Canonical Kind = iota
	// NumberFirst is the row-first form, e.g. "12A".
	NumberFirst
	// Unrecognized is anything that matches neither form.
	Unrecognized
)

var (
	canonicalRe   = regexp.MustCompile(`^[A-F]\d{1,2}$`)
	numberFirstRe = regexp.MustCompile(`^(\d{1,2})([A-F])$`)
)

// Parse classifies s and returns its canonical rendering. Unrecognized
// input is returned unchanged so callers can decide whether to reject it.
func Parse(s string) (string, Kind) {
	if canonicalRe.MatchString(s) {
		return s, Canonical
	}
	if m := numberFirstRe.FindStringSubmatch(s); m != nil {
		return m[2] + m[1], NumberFirst
	}
	return s, Unrecognized
}

// ToCanonical converts s to letter-first form. Already-canonical input is
// returned as is; unrecognized input passes through unchanged. Idempotent.
func ToCanonical(s string) string {
	canonical, _ := Parse(s)
	return canonical
}

// IsValid reports whether s is a well-formed canonical seat identifier.
func IsValid(s string) bool {
	return canonicalRe.MatchString(s)
}
