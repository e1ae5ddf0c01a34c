package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorPattern = regexp.MustCompile(`[-_]`)
	nonSlugPattern   = regexp.MustCompile(`[^a-z0-9]+`)
)

// SlugToName turns a file or folder slug into a display name:
// "negro-sport" becomes "Negro Sport".
func SlugToName(slug string) string {
	words := strings.Fields(separatorPattern.ReplaceAllString(slug, " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// NameToSlug turns a display name into a filesystem-safe slug:
// "Blanco Almendra" becomes "blanco-almendra". Applying it twice is a no-op.
func NameToSlug(name string) string {
	s := strings.ToLower(stripAccents(name))
	s = nonSlugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
