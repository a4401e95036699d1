package newsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestQueryURL(t *testing.T) {
	t.Parallel()

	client := NewClient("https://news.google.com/rss/search", "en", "US", "US:en", Options{})
	raw := client.QueryURL("chiefs super bowl")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("QueryURL produced unparseable URL: %v", err)
	}
	params := parsed.Query()
	if got := params.Get("q"); got != "chiefs super bowl" {
		t.Fatalf("q = %q", got)
	}
	if got := params.Get("hl"); got != "en" {
		t.Fatalf("hl = %q", got)
	}
	if got := params.Get("gl"); got != "US" {
		t.Fatalf("gl = %q", got)
	}
	if got := params.Get("ceid"); got != "US:en" {
		t.Fatalf("ceid = %q", got)
	}
}

func TestQueryURLOmitsEmptyLocaleParams(t *testing.T) {
	t.Parallel()

	client := NewClient("https://feeds.example.com/search", "", "", "", Options{})
	parsed, err := url.Parse(client.QueryURL("rates"))
	if err != nil {
		t.Fatalf("QueryURL produced unparseable URL: %v", err)
	}
	params := parsed.Query()
	for _, key := range []string{"hl", "gl", "ceid"} {
		if params.Has(key) {
			t.Fatalf("param %q present for empty locale config", key)
		}
	}
}

func TestSearchMapsFeedItems(t *testing.T) {
	t.Parallel()

	const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>search</title>
  <item>
    <title>Chiefs clinch playoff berth</title>
    <link>https://example.com/chiefs</link>
    <pubDate>Mon, 06 Jan 2025 12:00:00 GMT</pubDate>
    <description>&lt;p&gt;The Chiefs clinched &amp;amp; celebrated.&lt;/p&gt;</description>
  </item>
  <item>
    <title>No link item</title>
    <description>dropped</description>
  </item>
</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", "US", "US:en", Options{Timeout: 5 * time.Second})
	items, err := client.Search(context.Background(), "chiefs")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item (linkless dropped), got %d", len(items))
	}

	item := items[0]
	if item.Title != "Chiefs clinch playoff berth" {
		t.Fatalf("title = %q", item.Title)
	}
	if item.Link != "https://example.com/chiefs" {
		t.Fatalf("link = %q", item.Link)
	}
	if item.Snippet != "The Chiefs clinched & celebrated." {
		t.Fatalf("snippet = %q", item.Snippet)
	}
	if item.PublishedAt == nil {
		t.Fatal("published at is nil")
	}
	if got := item.PublishedAt.UTC().Format(time.RFC3339); got != "2025-01-06T12:00:00Z" {
		t.Fatalf("published at = %s", got)
	}
	if item.Source != "example.com" {
		t.Fatalf("source = %q, want hostname fallback", item.Source)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	client := NewClient("https://feeds.example.com/search", "en", "US", "US:en", Options{})
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{`<a href="x">Fed holds</a> rates &amp; signals cuts`, "Fed holds rates & signals cuts"},
		{"plain text", "plain text"},
		{"  spaced\n\nout  ", "spaced out"},
		{"<div><p></p></div>", ""},
	}
	for _, tc := range cases {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
