package feed

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerptStripsMarkup(t *testing.T) {
	raw := `<p>Hello <a href="https://example.com">world</a>, this is <b>bold</b>.</p><img src="x.png">`
	got := Excerpt(raw)

	if strings.Contains(got, "<") {
		t.Errorf("Expected markup to be stripped, got: %s", got)
	}
	if !strings.Contains(got, "Hello world") {
		t.Errorf("Expected text to survive, got: %s", got)
	}
}

func TestExcerptCollapsesWhitespace(t *testing.T) {
	got := Excerpt("a\n\n  b\t\tc")
	if got != "a b c" {
		t.Errorf("Expected 'a b c', got: %q", got)
	}
}

func TestExcerptTruncatesAtWordBoundary(t *testing.T) {
	word := "abcdefghi " // 10 chars
	raw := strings.Repeat(word, 40)

	got := Excerpt(raw)

	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got: %q", got)
	}
	body := strings.TrimSuffix(got, "…")
	if len(body) > 280 {
		t.Errorf("Expected at most 280 characters before the ellipsis, got %d", len(body))
	}
	if strings.HasSuffix(body, " ") {
		t.Errorf("Expected no trailing space before ellipsis, got: %q", got)
	}
	// Must not cut mid-word.
	for _, w := range strings.Fields(body) {
		if w != "abcdefghi" {
			t.Errorf("Expected only whole words, found fragment: %q", w)
		}
	}
}

func TestExcerptTruncatesMultiByteText(t *testing.T) {
	raw := strings.Repeat("日", 300)

	got := Excerpt(raw)

	if !utf8.ValidString(got) {
		t.Fatalf("Expected valid UTF-8, got: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got: %q", got)
	}
	body := strings.TrimSuffix(got, "…")
	if n := utf8.RuneCountInString(body); n != 280 {
		t.Errorf("Expected 280 characters before the ellipsis, got %d", n)
	}
}

func TestExcerptShortMultiByteTextUnchanged(t *testing.T) {
	raw := strings.Repeat("ü", 280)
	if got := Excerpt(raw); got != raw {
		t.Errorf("Expected 280-character text unchanged, got %d characters", utf8.RuneCountInString(got))
	}
}

func TestExcerptShortTextUnchanged(t *testing.T) {
	if got := Excerpt("short text"); got != "short text" {
		t.Errorf("Expected 'short text', got: %q", got)
	}
}

func TestExcerptEmpty(t *testing.T) {
	if got := Excerpt(""); got != "" {
		t.Errorf("Expected empty excerpt, got: %q", got)
	}
}
