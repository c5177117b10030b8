package domain

import "strings"

// Marker prefixes every machine-generated text field so that later stages
// and readers can tell it apart from human-written content.
const Marker = "🟨 "

var markerGlyph = strings.TrimSpace(Marker)

// MarkGenerated prefixes s with Marker. Already-marked text is not marked twice.
func MarkGenerated(s string) string {
	s = strings.TrimSpace(s)
	if IsGenerated(s) {
		return s
	}
	return Marker + s
}

// IsGenerated reports whether s starts with the marker glyph.
func IsGenerated(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), markerGlyph)
}

// StripMarker removes every marker glyph from s.
func StripMarker(s string) string {
	s = strings.ReplaceAll(s, Marker, "")
	s = strings.ReplaceAll(s, markerGlyph, "")
	return strings.TrimSpace(s)
}
