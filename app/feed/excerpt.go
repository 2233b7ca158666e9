package feed

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const excerptLength = 280

var whitespacePattern = regexp.MustCompile(`\s+`)

// Excerpt derives a plain-text summary from a feed-supplied body: markup is
// stripped, whitespace collapsed, and the result truncated to 280 characters
// at a word boundary with an ellipsis.
func Excerpt(raw string) string {
	if raw == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		doc.Find("img, figure, script, style").Remove()
		text = doc.Text()
	}

	trimmed := strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(trimmed) <= excerptLength {
		return trimmed
	}

	// Truncate on a rune boundary so multi-byte text is never split mid-rune.
	cut := string([]rune(trimmed)[:excerptLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
