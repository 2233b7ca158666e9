package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Papers get cited in running text as "arXiv:2403.05530" or a bare DOI;
// turning those into links saves the reader a copy-paste round trip.
var (
	arxivPattern = regexp.MustCompile(`\barXiv:(\d{4}\.\d{4,5}(?:v\d+)?)`)
	doiPattern   = regexp.MustCompile(`\b(10\.\d{4,9}/[-._;()/:A-Za-z0-9]+)`)
)

// LinkifyAcademic wraps arXiv identifiers and DOIs found in text nodes with
// links to their canonical landing pages. Text already inside an anchor is
// left alone.
func LinkifyAcademic(html string) string {
	segments := splitOutsideAnchors(html)
	var b strings.Builder
	for _, seg := range segments {
		if seg.inAnchor || seg.isTag {
			b.WriteString(seg.text)
			continue
		}
		linked := arxivPattern.ReplaceAllStringFunc(seg.text, func(m string) string {
			id := arxivPattern.FindStringSubmatch(m)[1]
			return fmt.Sprintf(`<a href="https://arxiv.org/abs/%s" rel="noopener noreferrer" target="_blank">%s</a>`, id, m)
		})
		linked = doiPattern.ReplaceAllStringFunc(linked, func(m string) string {
			// A trailing period is almost always sentence punctuation,
			// not part of the DOI.
			id := strings.TrimRight(m, ".")
			trailer := m[len(id):]
			return fmt.Sprintf(`<a href="https://doi.org/%s" rel="noopener noreferrer" target="_blank">%s</a>%s`, id, id, trailer)
		})
		b.WriteString(linked)
	}
	return b.String()
}

type htmlSegment struct {
	text     string
	isTag    bool
	inAnchor bool
}

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// splitOutsideAnchors chops HTML into tag and text segments, flagging text
// that sits inside an <a> element. A tokenizer is enough here; the input is
// readability output, not arbitrary markup.
func splitOutsideAnchors(html string) []htmlSegment {
	var segments []htmlSegment
	depth := 0
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(html, -1) {
		if loc[0] > last {
			segments = append(segments, htmlSegment{text: html[last:loc[0]], inAnchor: depth > 0})
		}
		tag := html[loc[0]:loc[1]]
		segments = append(segments, htmlSegment{text: tag, isTag: true})
		lower := strings.ToLower(tag)
		if strings.HasPrefix(lower, "<a ") || lower == "<a>" {
			depth++
		} else if strings.HasPrefix(lower, "</a") && depth > 0 {
			depth--
		}
		last = loc[1]
	}
	if last < len(html) {
		segments = append(segments, htmlSegment{text: html[last:], inAnchor: depth > 0})
	}
	return segments
}
