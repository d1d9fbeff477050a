// internal/utils/slug.go
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// GenerateSlug turns free text into a URL-safe identifier: lowercase ASCII letters,
// digits and single hyphens. Accented letters lose their marks ("Grúa" -> "grua");
// anything else outside that alphabet is dropped. The result may be empty.
func GenerateSlug(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSep := false

	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingSep = true
		}
	}

	return b.String()
}

// IsSlug reports whether s is already in the form produced by GenerateSlug.
func IsSlug(s string) bool {
	return s != "" && GenerateSlug(s) == s
}
