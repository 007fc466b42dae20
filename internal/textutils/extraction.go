// Package textutils provides text normalization helpers shared by the detector,
// the extractor and the classifier.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics so that "Comisión" and "comision"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// MatchedKeywords returns the keywords contained in text, in keyword order.
// Each keyword counts at most once. Matching is case-insensitive only:
// accents must match, so "depósito" does not match "deposito".
func MatchedKeywords(text string, keywords []string) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// Preview returns at most n runes of s, with an ellipsis when truncated.
// It is used to keep log lines short.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// CollapseSpaces replaces runs of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
