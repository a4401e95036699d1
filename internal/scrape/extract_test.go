package scrape

import (
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func TestExtractImagePrefersOpenGraph(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><head>
		<meta name="twitter:image" content="https://cdn.example.com/twitter.jpg">
		<meta property="og:image" content="https://cdn.example.com/og.jpg">
	</head><body></body></html>`

	got, ok := ExtractImage(htmlBody, mustParseURL(t, "https://example.com/story"))
	if !ok {
		t.Fatal("ExtractImage found nothing")
	}
	if got != "https://cdn.example.com/og.jpg" {
		t.Fatalf("ExtractImage = %q, want og:image", got)
	}
}

func TestExtractImageSkipsPlaceholderMeta(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><head>
		<meta property="og:image" content="https://lh3.googleusercontent.com/placeholder.png">
		<meta name="twitter:image" content="https://cdn.example.com/real.jpg">
	</head><body></body></html>`

	got, ok := ExtractImage(htmlBody, nil)
	if !ok {
		t.Fatal("ExtractImage found nothing")
	}
	if got != "https://cdn.example.com/real.jpg" {
		t.Fatalf("ExtractImage = %q, want placeholder skipped", got)
	}
}

func TestExtractImageResolvesRelativeMeta(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><head><meta property="og:image" content="/img/lead.jpg"></head></html>`
	got, ok := ExtractImage(htmlBody, mustParseURL(t, "https://example.com/story/123"))
	if !ok {
		t.Fatal("ExtractImage found nothing")
	}
	if got != "https://example.com/img/lead.jpg" {
		t.Fatalf("ExtractImage = %q", got)
	}
}

func TestExtractImageInlineFallbackRequiresSize(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><body>
		<img src="https://cdn.example.com/icon.png" width="32" height="32">
		<img src="https://cdn.example.com/nosize.png">
		<img src="https://cdn.example.com/hero.jpg" width="800" height="450">
	</body></html>`

	got, ok := ExtractImage(htmlBody, nil)
	if !ok {
		t.Fatal("ExtractImage found nothing")
	}
	if got != "https://cdn.example.com/hero.jpg" {
		t.Fatalf("ExtractImage = %q, want large inline image", got)
	}
}

func TestExtractImageRejectsNonHTTPSchemes(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><head><meta property="og:image" content="data:image/png;base64,AAAA"></head></html>`
	if got, ok := ExtractImage(htmlBody, nil); ok {
		t.Fatalf("ExtractImage = %q, want no image for data URI", got)
	}
}

func TestExtractImageNothingUsable(t *testing.T) {
	t.Parallel()

	htmlBody := `<html><body><p>text only</p></body></html>`
	if got, ok := ExtractImage(htmlBody, nil); ok {
		t.Fatalf("ExtractImage = %q, want none", got)
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want bool
	}{
		{"https://news.google.com/img/x.png", true},
		{"https://lh3.googleusercontent.com/abc", true},
		{"https://encrypted-tbn0.gstatic.com/images?q=x", true},
		{"https://cdn.example.com/photo.jpg", false},
		{"/relative/img.png", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsPlaceholder(tc.url); got != tc.want {
			t.Fatalf("IsPlaceholder(%q) = %t, want %t", tc.url, got, tc.want)
		}
	}
}

func TestPlaceholderPatterns(t *testing.T) {
	t.Parallel()

	patterns := PlaceholderPatterns()
	if len(patterns) == 0 {
		t.Fatal("no placeholder patterns")
	}
	for _, p := range patterns {
		if p[0] != '%' || p[len(p)-1] != '%' {
			t.Fatalf("pattern %q is not substring-shaped", p)
		}
	}
}
