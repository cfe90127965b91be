package nlu

import (
	"regexp"
	"strings"
)

var (
	disallowedRe = regexp.MustCompile(`[^a-z0-9\s+\-*/.]`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Normalize lowercases t, replaces everything except letters, digits,
// whitespace and arithmetic symbols with spaces and collapses whitespace.
// Normalize(Normalize(t)) == Normalize(t).
func Normalize(t string) string {
	if t == "" {
		return ""
	}
	t = strings.ToLower(t)
	t = disallowedRe.ReplaceAllString(t, " ")
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
