package feed

import (
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", entry.Title)
	}
	if entry.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", entry.Link)
	}
	if entry.Content != "Test Item 1 Description" {
		t.Errorf("Expected description as content, got: %s", entry.Content)
	}
	if entry.PublishedAt == nil {
		t.Fatal("Expected publish date to be set")
	}
	want := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !entry.PublishedAt.Equal(want) {
		t.Errorf("Expected publish date %v, got: %v", want, entry.PublishedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">Test content</content>
  </entry>
</feed>`

	parser := NewParser()
	entries, err := parser.Run([]byte(atomData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	if entries[0].Title != "Test Entry" {
		t.Errorf("Expected title 'Test Entry', got: %s", entries[0].Title)
	}
	if entries[0].Content != "Test content" {
		t.Errorf("Expected content 'Test content', got: %s", entries[0].Content)
	}
	if entries[0].PublishedAt == nil {
		t.Error("Expected updated timestamp to be used as publish date")
	}
}

func TestParseDropsEntriesWithoutTitleOrLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Kept</title>
      <link>https://example.com/kept</link>
    </item>
    <item>
      <description>No title, no link</description>
    </item>
    <item>
      <title>No link either</title>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}
	if entries[0].Title != "Kept" {
		t.Errorf("Expected surviving entry 'Kept', got: %s", entries[0].Title)
	}
}

func TestParsePrefersContentOverDescription(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Rich Item</title>
      <link>https://example.com/rich</link>
      <description>Short description</description>
      <content:encoded><![CDATA[<p>Full body</p>]]></content:encoded>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}
	if entries[0].Content != "<p>Full body</p>" {
		t.Errorf("Expected content:encoded to win, got: %s", entries[0].Content)
	}
}

func TestParseSanitizesUnescapedAmpersands(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Broken & Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>R&D News</title>
      <link>https://example.com/rd?a=1&b=2</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected sanitized feed to parse, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}
	if entries[0].Title != "R&D News" {
		t.Errorf("Expected title 'R&D News', got: %s", entries[0].Title)
	}
}
