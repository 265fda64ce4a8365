// Package normalizer canonicalizes free-text skill names so that lexical
// variants of the same skill compare equal.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	separators = regexp.MustCompile(`[\s/]+`)

	stopWords = map[string]struct{}{
		"and": {},
		"&":   {},
		"/":   {},
		"-":   {},
		"of":  {},
		"for": {},
		"in":  {},
		"to":  {},
	}
)

// Normalize lower-cases the token, spells out ampersands, collapses
// whitespace and slash runs and removes stop words. Empty input yields "".
func Normalize(token string) string {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "&", "and")
	s = separators.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

// NormalizeList normalizes every token and drops the ones that end up empty.
func NormalizeList(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Set returns the normalized tokens as a set.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range NormalizeList(tokens) {
		set[t] = struct{}{}
	}
	return set
}
