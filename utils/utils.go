package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func GenerateSlug(name string) string {
	// Normalize accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeName composes the display name to NFC and collapses runs of whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
