package handlers

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// cleanText strips markup from free text sent by clients and returns plain
// text. Entities are decoded before sanitizing so encoded tags are stripped
// too; the pass repeats until the text no longer changes.
func cleanText(s string) string {
	for range 4 {
		next := html.UnescapeString(strict.Sanitize(html.UnescapeString(s)))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(s))
}
