// Package phrase holds the normalization rule shared by the store and the
// matcher. A phrase is keyed by its folded, trimmed form everywhere, so two
// differently-cased spellings of the same text always resolve to one key.
package phrase

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and applies Unicode case folding.
// A Caser is stateful, so one is created per call.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
