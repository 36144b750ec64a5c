// Package sanitize cleans untrusted strings before they reach the display
// pages. Backend-sourced fields and scanned payloads are never trusted.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from s and unescapes entities, returning plain
// text safe to re-escape at render time.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// HTML returns s with markup stripped and the remainder HTML-escaped,
// suitable for direct insertion into a page.
func HTML(s string) string {
	return html.EscapeString(Text(s))
}
