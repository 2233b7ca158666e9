// Package extract fetches article pages and reduces them to clean reader
// content, preserving embedded media across the reduction.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// ErrNoArticle means the page fetched fine but no readable article could be
// carved out of it.
var ErrNoArticle = errors.New("no readable article content found")

// FetchError reports a non-success response from the upstream site.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.Status, e.URL)
}

// Result is the cleaned article handed back to the reader view.
type Result struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	TextContent string `json:"textContent"`
	Excerpt     string `json:"excerpt"`
	Byline      string `json:"byline"`
	SiteName    string `json:"siteName"`
}

const (
	fetchTimeout = 10 * time.Second
	maxBodySize  = 5 << 20
)

type Extractor struct {
	client    *http.Client
	userAgent string
}

func New(userAgent string) *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: userAgent,
	}
}

// Extract downloads the page at pageURL and returns its reader-mode content.
// Embeds are shielded before extraction and rebuilt afterwards, so videos
// and players survive content scoring instead of being stripped as chrome.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Result, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid article URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Status: 0}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Status: 0}
	}

	return fromHTML(string(body), parsed)
}

// fromHTML runs the full shield / extract / restore pipeline on raw page
// HTML. Split out from Extract so the pipeline can be exercised without a
// network.
func fromHTML(pageHTML string, base *url.URL) (*Result, error) {
	doc, err := newDocument(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	slots := shieldMedia(doc, base)

	shielded, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize shielded page: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(shielded), base)
	if err != nil {
		return nil, ErrNoArticle
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, ErrNoArticle
	}

	restored, err := restoreMedia(article.Content, slots)
	if err != nil {
		return nil, err
	}

	return &Result{
		Title:       article.Title,
		Content:     LinkifyAcademic(restored),
		TextContent: stripShieldTokens(article.TextContent),
		Excerpt:     article.Excerpt,
		Byline:      article.Byline,
		SiteName:    article.SiteName,
	}, nil
}
