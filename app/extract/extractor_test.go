package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Why Queues Beat Locks</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Why Queues Beat Locks</h1>
<p>When two workers contend for the same resource, the instinct is to reach
for a mutex. That instinct serves well in small programs, but once the
critical section grows past a handful of instructions the lock becomes the
bottleneck, and every profile of the system points at the same line.</p>
<p>Queues invert the problem. Instead of many workers fighting over shared
state, a single owner drains a queue of requests. Contention collapses to the
enqueue operation, which modern runtimes make nearly free, and the owner can
batch, reorder, and coalesce work in ways a lock never permits.</p>
<iframe src="/talks/queues.html" width="560" height="315"></iframe>
<p>The video above walks through a production incident where swapping one
mutex for a queue dropped tail latency by an order of magnitude. The change
was forty lines, and most of them were deletions of retry logic that the
lock had made necessary in the first place.</p>
<p>None of this means locks are obsolete. Short critical sections, read-mostly
data, and simple invariants are still their territory. The point is to notice
when a lock has quietly become a scheduler, because a queue is a better
scheduler than a lock will ever be.</p>
</article>
<footer>Subscribe to the newsletter</footer>
</body></html>`

func TestFromHTMLKeepsEmbeds(t *testing.T) {
	base, _ := url.Parse("https://blog.example.com/posts/queues")

	result, err := fromHTML(articlePage, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Why Queues Beat Locks" {
		t.Errorf("expected article title, got %q", result.Title)
	}
	if !strings.Contains(result.Content, "Queues invert the problem") {
		t.Errorf("expected article body in output, got %s", result.Content)
	}
	if strings.Contains(result.Content, "MEDIA_SHIELD") {
		t.Errorf("expected no leftover placeholders, got %s", result.Content)
	}
	if !strings.Contains(result.Content, `src="https://blog.example.com/talks/queues.html"`) {
		t.Errorf("expected embed restored with absolute src, got %s", result.Content)
	}
	if strings.Contains(result.Content, "Subscribe to the newsletter") {
		t.Errorf("expected page chrome stripped, got %s", result.Content)
	}
	if !strings.Contains(result.TextContent, "Queues invert the problem") {
		t.Errorf("expected plain text alongside the markup, got %s", result.TextContent)
	}
	if strings.Contains(result.TextContent, "MEDIA_SHIELD") {
		t.Errorf("expected no placeholders in plain text, got %s", result.TextContent)
	}
	if strings.Contains(result.TextContent, "<p>") {
		t.Errorf("expected plain text without markup, got %s", result.TextContent)
	}
}

func TestExtractOverHTTP(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	e := New("TestAgent/1.0")
	result, err := e.Extract(context.Background(), srv.URL+"/posts/queues")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "TestAgent/1.0" {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
	if result.Title != "Why Queues Beat Locks" {
		t.Errorf("expected article title, got %q", result.Title)
	}
}

func TestExtractUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	e := New("TestAgent/1.0")
	_, err := e.Extract(context.Background(), srv.URL+"/missing")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fetchErr.Status)
	}
}

func TestExtractNoArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	e := New("TestAgent/1.0")
	_, err := e.Extract(context.Background(), srv.URL+"/empty")
	if !errors.Is(err, ErrNoArticle) {
		t.Errorf("expected ErrNoArticle, got %v", err)
	}
}

func TestExtractRejectsBadURL(t *testing.T) {
	e := New("TestAgent/1.0")
	for _, bad := range []string{"", "ftp://example.com/file", "not a url", "javascript:alert(1)"} {
		if _, err := e.Extract(context.Background(), bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
