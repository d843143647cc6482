package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// cleanText strips markup from user-generated text and trims surrounding whitespace.
// The result is plain text: the entities the sanitizer emits are decoded again.
func cleanText(input string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(input)))
}
