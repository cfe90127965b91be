// Package calc evaluates the spoken-style arithmetic the assistant accepts:
// "5 plus 3", "12 divided by 4", "(2 + 3) * 4".
package calc

import (
	"strconv"
	"strings"
)

var wordOperators = strings.NewReplacer(
	"multiplied by", "*",
	"times", "*",
	"plus", "+",
	"minus", "-",
	"divided by", "/",
	"over", "/",
)

// Rewrite replaces word operators with their symbols.
func Rewrite(s string) string {
	return wordOperators.Replace(s)
}

const allowed = "0123456789+-*/.() "

// Sanitize drops every character outside digits, operators, dots,
// parentheses and spaces.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(allowed, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Evaluate rewrites, sanitizes and evaluates a calculator request.
func Evaluate(param string) (float64, error) {
	return Eval(Sanitize(Rewrite(param)))
}

// Format renders a result the shortest way that round-trips, so whole
// numbers carry no fraction.
func Format(v float64) string {
	if v == 0 {
		v = 0 // folds -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
