package spirit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and drops the combining
// marks, so "Pokémon" and "Pokemon" sanitize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize folds a display name into the catalog key space: trimmed,
// diacritic-stripped and lower-cased. Sanitizing an already sanitized
// key is a no-op, so keys can be passed back in wherever a name is
// accepted.
func Sanitize(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
