// Package textmatch normalizes free text and scores how closely two strings match.
package textmatch

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lower-cases text and reduces it to single-space separated runs of [a-z0-9].
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonAlnumPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// Ratio returns 2*M/T where M is the number of characters covered by the
// recursively found longest matching blocks of a and b, and T is the total
// length of both strings. Two empty strings are a perfect match.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := newMatcher(ra, rb)
	return 2.0 * float64(m.matchedChars()) / float64(total)
}

// Confidence is a secondary Jaro-Winkler score used for reporting only.
// It never influences candidate selection.
func Confidence(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false)
}
