// Package scrape resolves redirector links to real article pages and
// pulls representative images and text out of them.
package scrape

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minInlineImageSide is the smallest explicit width/height an inline
// image may declare and still count as article art.
const minInlineImageSide = 200

// placeholderHosts serve generic feed assets, never real article art.
// Thumbnails on these hosts are always eligible for replacement.
var placeholderHosts = []string{
	"news.google.com",
	"gstatic.com",
	"googleusercontent.com",
}

// PlaceholderPatterns returns SQL LIKE patterns matching placeholder
// thumbnail URLs, for use in candidate selection.
func PlaceholderPatterns() []string {
	patterns := make([]string, 0, len(placeholderHosts))
	for _, host := range placeholderHosts {
		patterns = append(patterns, "%"+host+"%")
	}
	return patterns
}

// IsPlaceholder reports whether an image URL points at a known
// placeholder host.
func IsPlaceholder(imageURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		// Relative placeholder paths cannot be attributed to a host.
		return false
	}
	for _, placeholder := range placeholderHosts {
		if host == placeholder || strings.HasSuffix(host, "."+placeholder) {
			return true
		}
	}
	return false
}

var metaImageSelectors = []struct {
	attr  string
	value string
}{
	{"property", "og:image"},
	{"property", "og:image:secure_url"},
	{"name", "twitter:image"},
	{"name", "twitter:image:src"},
	{"itemprop", "image"},
	{"name", "image"},
}

// ExtractImage parses article HTML and returns the best representative
// image URL: open-graph first, then twitter-card, then generic image
// meta tags, then the first large inline image. Placeholder-host
// candidates are rejected at every step. The second return is false
// when no acceptable image exists.
func ExtractImage(htmlBody string, base *url.URL) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", false
	}

	for _, sel := range metaImageSelectors {
		selector := "meta[" + sel.attr + `="` + sel.value + `"]`
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if resolved, ok := acceptImage(content, base); ok {
				return resolved, true
			}
		}
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if !largeEnough(img) {
			return true
		}
		src, ok := img.Attr("src")
		if !ok {
			return true
		}
		if resolved, ok := acceptImage(src, base); ok {
			found = resolved
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}

	return "", false
}

func largeEnough(img *goquery.Selection) bool {
	width, okW := dimension(img, "width")
	height, okH := dimension(img, "height")
	return okW && okH && width > minInlineImageSide && height > minInlineImageSide
}

func dimension(img *goquery.Selection, attr string) (int, bool) {
	raw, ok := img.Attr(attr)
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
	if err != nil {
		return 0, false
	}
	return value, true
}

func acceptImage(raw string, base *url.URL) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", false
	}
	resolved := resolveRef(candidate, base)
	if resolved == "" {
		return "", false
	}
	if IsPlaceholder(resolved) {
		return "", false
	}
	return resolved, true
}

func resolveRef(raw string, base *url.URL) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}
