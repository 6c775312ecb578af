package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup from free text before it is stored
var textPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds how many layers of entity encoding are peeled off
const maxSanitizePasses = 5

// sanitizeText removes markup and surrounding whitespace. bluemonday escapes
// entities in its output; they are unescaped and the text sanitized again until it
// is stable, so encoded markup never comes back as markup.
func sanitizeText(s string) string {
	out := s
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(next)
		}
		out = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(out))
}

// sanitizeOptional sanitizes s, mapping blank results to nil
func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
