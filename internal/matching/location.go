package matching

import (
	"strings"
	"unicode"
)

// LocationsMatch compares two free-text locations. Exact equality of the
// normalized strings is checked before bidirectional containment.
func LocationsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	na, nb := normalizeLocation(a), normalizeLocation(b)
	if na == nb {
		return true
	}
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeLocation(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}
