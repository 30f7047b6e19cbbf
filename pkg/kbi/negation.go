package kbi

import "strings"

// negationPrefixes are checked in order; at most one is stripped.
var negationPrefixes = []string{"not ", "NOT ", "! "}

// ParsePredicateName splits a negation prefix off raw and reports whether one
// was present. Only the first matching prefix is removed, so
// "not not flying" parses to ("not flying", true).
func ParsePredicateName(raw string) (name string, negative bool) {
	for _, prefix := range negationPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return raw[len(prefix):], true
		}
	}
	return raw, false
}
