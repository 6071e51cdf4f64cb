package dictionary

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims and strips accents so that "Épée" and "epee"
// hit the same dictionary row.
func Normalize(word string) string {
	trimmed := strings.ToLower(strings.TrimSpace(word))
	stripped, _, err := transform.String(accentStripper, trimmed)
	if err != nil {
		return trimmed
	}
	return stripped
}
