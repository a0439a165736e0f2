// Package sanitize strips markup from user supplied free text before it is
// stored or indexed.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds the sanitize/unescape loop for deeply nested entities.
const maxPasses = 4

// Text removes every HTML element, unescapes entities and trims whitespace.
// Entity-encoded markup is sanitized again after unescaping so it cannot come
// back as live tags.
func Text(s string) string {
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing: keep the escaped form.
	return strings.TrimSpace(strict.Sanitize(out))
}

// Optional applies Text to a pointer value and returns nil for blank input.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	if v == "" {
		return nil
	}
	return &v
}
