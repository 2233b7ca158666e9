package extract

import (
	"net/url"
	"strings"
	"testing"
)

func TestShieldMedia(t *testing.T) {
	page := `<html><body><article>
		<p>Intro paragraph.</p>
		<iframe src="/embed/abc123" width="560"></iframe>
		<video data-src="https://cdn.example.com/clip.mp4"></video>
		<img data-src="/images/photo.jpg">
	</article></body></html>`

	doc, err := newDocument(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base, _ := url.Parse("https://blog.example.com/posts/hello")

	slots := shieldMedia(doc, base)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}

	if slots[0].Src != "https://blog.example.com/embed/abc123" {
		t.Errorf("expected relative iframe src resolved, got %q", slots[0].Src)
	}
	if slots[0].Provider != "iframe" {
		t.Errorf("expected provider iframe, got %q", slots[0].Provider)
	}
	if slots[1].Src != "https://cdn.example.com/clip.mp4" {
		t.Errorf("expected lazy video src picked up, got %q", slots[1].Src)
	}
	if slots[1].Provider != "media" {
		t.Errorf("expected provider media, got %q", slots[1].Provider)
	}

	html, _ := doc.Html()
	if doc.Find("iframe").Length() != 0 || doc.Find("video").Length() != 0 {
		t.Error("expected embeds replaced by placeholders")
	}
	if !strings.Contains(html, shieldToken(0)) || !strings.Contains(html, shieldToken(1)) {
		t.Errorf("expected placeholder tokens in shielded document, got %s", html)
	}

	src, _ := doc.Find("img").Attr("src")
	if src != "https://blog.example.com/images/photo.jpg" {
		t.Errorf("expected lazy image absolutized, got %q", src)
	}
}

func TestShieldMediaProviderClassification(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"youtube", `<iframe src="https://www.youtube.com/embed/xyz"></iframe>`, "youtube"},
		{"vimeo", `<iframe src="https://player.vimeo.com/video/123"></iframe>`, "vimeo"},
		{"generic iframe", `<iframe src="https://player.example.com/e/1"></iframe>`, "iframe"},
		{"audio", `<audio src="https://cdn.example.com/pod.mp3"></audio>`, "media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newDocument("<html><body>" + tt.html + "</body></html>")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			slots := shieldMedia(doc, nil)
			if len(slots) != 1 {
				t.Fatalf("expected 1 slot, got %d", len(slots))
			}
			if slots[0].Provider != tt.want {
				t.Errorf("expected provider %q, got %q", tt.want, slots[0].Provider)
			}
		})
	}
}

func TestRestoreMedia(t *testing.T) {
	content := `<div><p>Before the video.</p><div>` + shieldToken(0) + `</div><p>After.</p></div>`
	slots := []Slot{{Index: 0, Provider: "youtube", Src: "https://www.youtube.com/embed/xyz"}}

	restored, err := restoreMedia(content, slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(restored, "MEDIA_SHIELD") {
		t.Errorf("expected placeholder replaced, got %s", restored)
	}
	if !strings.Contains(restored, `<iframe src="https://www.youtube.com/embed/xyz"`) {
		t.Errorf("expected restored iframe, got %s", restored)
	}
	if !strings.Contains(restored, `data-provider="youtube"`) {
		t.Errorf("expected provider annotation, got %s", restored)
	}
	if !strings.Contains(restored, "<p>Before the video.</p>") {
		t.Errorf("expected surrounding content intact, got %s", restored)
	}
}

func TestRestoreMediaLinkCard(t *testing.T) {
	content := `<div><div>` + shieldToken(0) + `</div></div>`
	slots := []Slot{{Index: 0, Provider: "media", Src: "https://cdn.example.com/pod.mp3"}}

	restored, err := restoreMedia(content, slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(restored, "<iframe") {
		t.Errorf("expected link card, not an iframe: %s", restored)
	}
	if !strings.Contains(restored, `<a href="https://cdn.example.com/pod.mp3"`) {
		t.Errorf("expected link to the media, got %s", restored)
	}
}

func TestRestoreMediaDroppedPlaceholder(t *testing.T) {
	// Extraction may discard a placeholder entirely; the rest must restore
	// without error.
	content := `<div><div>` + shieldToken(1) + `</div></div>`
	slots := []Slot{
		{Index: 0, Provider: "youtube", Src: "https://www.youtube.com/embed/a"},
		{Index: 1, Provider: "youtube", Src: "https://www.youtube.com/embed/b"},
	}

	restored, err := restoreMedia(content, slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(restored, "embed/b") {
		t.Errorf("expected surviving slot restored, got %s", restored)
	}
	if strings.Contains(restored, "embed/a") {
		t.Errorf("expected dropped slot absent, got %s", restored)
	}
}

func TestRestoreMediaEmptySrc(t *testing.T) {
	content := `<div><div>` + shieldToken(0) + `</div></div>`
	slots := []Slot{{Index: 0, Provider: "media", Src: ""}}

	restored, err := restoreMedia(content, slots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(restored, "MEDIA_SHIELD") {
		t.Errorf("expected placeholder removed even without a src, got %s", restored)
	}
}
