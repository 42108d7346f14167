// Package textutil provides the text normalization used for archive path
// segments.
//
// Human-entered location names arrive with arbitrary casing, accents, and
// punctuation. Slug folds them into stable lowercase ASCII segments so the
// same site always maps to the same archive directory.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug converts a human-entered name into a lowercase hyphenated path segment.
// Accented characters are folded to their base form; runs of anything outside
// [a-z0-9] collapse into a single hyphen.
func Slug(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}

// SlugOr returns Slug(name), or fallback when the name folds to nothing.
func SlugOr(name, fallback string) string {
	if slug := Slug(name); slug != "" {
		return slug
	}
	return fallback
}
