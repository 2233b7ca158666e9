// Package trending ranks keywords across recent post titles.
package trending

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLimit is how many keywords the ranker returns unless asked otherwise.
const DefaultLimit = 8

// minTokenLength filters out short noise tokens like "go" and "ai" that would
// otherwise dominate every window.
const minTokenLength = 3

// Keyword is a ranked term with the number of distinct titles it appeared in.
type Keyword struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// stopwords are terms too generic to signal a trend in a tech feed: English
// function words plus the feed-speak and tech filler that shows up in almost
// every headline.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "with", "from", "this", "that", "your", "will",
		"have", "new", "how", "why", "what", "who", "where", "when", "into",
		"over", "under", "about", "after", "before", "out", "off", "all",
		"any", "each", "most", "some", "such", "very", "been", "were", "was",
		"are", "can", "not", "but", "let", "get", "use", "using", "build",
		"building", "make", "making", "developer", "engineering",
		"development", "release", "version", "update", "announcing",
		"introducing", "guide", "tutorial", "blog", "post", "feed", "news",
		"hacker", "show", "part", "best", "tool", "toolkit", "framework",
		"service", "system", "application", "project", "server", "client",
		"database", "data", "cloud", "security", "secure", "management",
		"work", "working", "today", "now",
	} {
		stopwords[w] = struct{}{}
	}
}

// foldDiacritics strips combining marks so "café" and "cafe" count as the
// same term.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize lowercases a title and splits it into candidate terms. Only
// letters, digits, '#' and '+' survive, so "C++" and "C#" stay intact while
// punctuation splits everything else.
func Tokenize(title string) []string {
	lowered := strings.ToLower(title)
	if folded, _, err := transform.String(foldDiacritics, lowered); err == nil {
		lowered = folded
	}

	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '#' || r == '+' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// Rank counts how many titles mention each keyword and returns the top limit
// terms, most frequent first. A term repeated within one title counts once,
// so a single listicle cannot inflate a keyword. Ties keep the order terms
// were first encountered in.
func Rank(titles []string, limit int) []Keyword {
	if limit <= 0 {
		limit = DefaultLimit
	}

	counts := map[string]int{}
	known := map[string]struct{}{}
	var order []string
	for _, title := range titles {
		seen := map[string]struct{}{}
		for _, tok := range Tokenize(title) {
			if len(tok) < minTokenLength {
				continue
			}
			if _, skip := stopwords[tok]; skip {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if _, dup := known[tok]; !dup {
				known[tok] = struct{}{}
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	ranked := make([]Keyword, 0, len(order))
	for _, term := range order {
		ranked = append(ranked, Keyword{Term: term, Count: counts[term]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
