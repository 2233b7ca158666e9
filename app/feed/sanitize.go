package feed

import (
	"regexp"
)

// Matches an ampersand followed by a valid entity reference, or a bare one.
// Several real-world feeds emit unescaped ampersands that abort XML parsing.
var entityPattern = regexp.MustCompile(`&(amp;|lt;|gt;|quot;|apos;|#[0-9]+;|#[xX][0-9a-fA-F]+;)?`)

// SanitizeXML escapes ampersands that are not already part of an entity
// reference so malformed feeds survive structural parsing.
func SanitizeXML(data []byte) []byte {
	return entityPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		if len(m) == 1 {
			return []byte("&amp;")
		}
		return m
	})
}
