package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ProjectID derives a URL-friendly project id from a title.
// Accents are stripped, anything outside [a-z0-9] collapses to a dash.
// Example: "Café Finder 2.0" -> "cafe-finder-2-0"
func ProjectID(title string) string {
	var result strings.Builder
	for _, r := range norm.NFD.String(title) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(unicode.ToLower(r))
	}

	slug := nonSlugChars.ReplaceAllString(result.String(), "-")
	return strings.Trim(slug, "-")
}

// Valid reports whether id is already in slug form
func Valid(id string) bool {
	return id != "" && ProjectID(id) == id
}
