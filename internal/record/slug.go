package record

import (
	"regexp"
	"strings"
)

// defaultSlug is used when a title slugifies to nothing.
const defaultSlug = "memory"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a filesystem-safe identifier from a title: lowercase,
// runs of non-alphanumerics collapsed to single hyphens, leading and
// trailing hyphens trimmed. An empty result falls back to "memory".
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}
