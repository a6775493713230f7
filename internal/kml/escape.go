// Package kml reads, writes and combines KML placemark documents.
package kml

import "strings"

// escaper replaces the five XML reserved characters. strings.Replacer works in a single
// pass, so entities it introduces are never escaped a second time.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape makes text safe for embedding in KML text content and attribute values.
func Escape(text string) string {
	return escaper.Replace(text)
}
