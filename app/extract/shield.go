package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// shieldToken is the placeholder written into the document in place of an
// embed. Readability treats the bare div as ordinary text and carries it
// through, which is exactly what lets the embed survive content scoring.
func shieldToken(n int) string {
	return fmt.Sprintf("[[MEDIA_SHIELD_%d]]", n)
}

var shieldTokenPattern = regexp.MustCompile(`\[\[MEDIA_SHIELD_\d+\]\]`)

// stripShieldTokens removes placeholders from plain-text output, where there
// is no embed to restore into.
func stripShieldTokens(text string) string {
	return shieldTokenPattern.ReplaceAllString(text, "")
}

func newDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Slot records one shielded embed so it can be rebuilt after extraction.
type Slot struct {
	Index    int
	Provider string
	Src      string
}

// srcAttrs are checked in order when resolving where an embed points.
// Lazy-loading themes stash the real URL in data attributes.
var srcAttrs = []string{"src", "data-src", "data-original-src", "href"}

// shieldMedia replaces every embed in doc with a numbered placeholder and
// returns the slots needed to restore them. Embed URLs are resolved against
// base so relative players survive the round trip.
func shieldMedia(doc *goquery.Document, base *url.URL) []Slot {
	var slots []Slot

	doc.Find("iframe, video, audio, embed, object").Each(func(_ int, sel *goquery.Selection) {
		src := resolveSrc(sel, base)
		slot := Slot{
			Index:    len(slots),
			Provider: classifyProvider(sel, src),
			Src:      src,
		}
		slots = append(slots, slot)
		sel.ReplaceWithHtml("<div>" + shieldToken(slot.Index) + "</div>")
	})

	// Absolutize lazy images in place; they stay in the document and
	// readability keeps or drops them on its own.
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if src := resolveSrc(sel, base); src != "" {
			sel.SetAttr("src", src)
		}
	})

	return slots
}

func resolveSrc(sel *goquery.Selection, base *url.URL) string {
	for _, attr := range srcAttrs {
		raw, ok := sel.Attr(attr)
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if base != nil {
			parsed = base.ResolveReference(parsed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		return parsed.String()
	}
	return ""
}

func classifyProvider(sel *goquery.Selection, src string) string {
	host := ""
	if parsed, err := url.Parse(src); err == nil {
		host = strings.ToLower(parsed.Hostname())
	}
	switch {
	case strings.Contains(host, "youtube") || strings.Contains(host, "youtu.be"):
		return "youtube"
	case strings.Contains(host, "vimeo"):
		return "vimeo"
	case goquery.NodeName(sel) == "iframe":
		return "iframe"
	default:
		return "media"
	}
}

// restoreMedia walks the extracted HTML and swaps each surviving placeholder
// back into a playable embed. Placeholders readability dropped are simply
// gone; the ones it kept are matched structurally by their token text, so
// whatever wrapper readability left around them does not matter.
func restoreMedia(html string, slots []Slot) (string, error) {
	if len(slots) == 0 {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	bySlot := make(map[string]Slot, len(slots))
	for _, slot := range slots {
		bySlot[shieldToken(slot.Index)] = slot
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		slot, ok := bySlot[strings.TrimSpace(sel.Text())]
		if !ok {
			return
		}
		sel.ReplaceWithHtml(renderEmbed(slot))
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Html()
	}
	return body.Html()
}

// renderEmbed builds the replacement markup for a restored slot. Known video
// providers get a responsive iframe with a plain-link fallback; anything else
// becomes a link card so the reader can still reach the media.
func renderEmbed(slot Slot) string {
	if slot.Src == "" {
		return ""
	}
	escaped := htmlEscape(slot.Src)

	switch slot.Provider {
	case "youtube", "vimeo", "iframe":
		return fmt.Sprintf(
			`<div class="media-embed" data-provider="%s">`+
				`<iframe src="%s" loading="lazy" allowfullscreen></iframe>`+
				`<p><a href="%s" rel="noopener noreferrer" target="_blank">%s</a></p>`+
				`</div>`,
			slot.Provider, escaped, escaped, escaped)
	default:
		return fmt.Sprintf(
			`<p class="media-link"><a href="%s" rel="noopener noreferrer" target="_blank">%s</a></p>`,
			escaped, escaped)
	}
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
