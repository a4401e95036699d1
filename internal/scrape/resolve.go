package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readMoreTextMinLength is the anchor-text length past which an
// outbound link is assumed to be the article itself.
const readMoreTextMinLength = 40

var readMoreHints = []string{
	"read more",
	"full article",
	"full story",
	"continue reading",
	"read full coverage",
}

// PickResolvedURL inspects redirector-page HTML for the real article
// URL: a canonical link tag, then an open-graph URL tag, then the first
// outbound anchor whose text suggests "read the article" or is long
// enough to be a headline. Only URLs off the redirector's own domain
// qualify. Returns "" when nothing resolves.
func PickResolvedURL(htmlBody string, base *url.URL, redirectorHost string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if resolved := acceptOffDomain(href, base, redirectorHost); resolved != "" {
			return resolved
		}
	}

	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		if resolved := acceptOffDomain(content, base, redirectorHost); resolved != "" {
			return resolved
		}
	}

	var picked string
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		resolved := acceptOffDomain(href, base, redirectorHost)
		if resolved == "" {
			return true
		}
		if !looksLikeArticleAnchor(anchor.Text()) {
			return true
		}
		picked = resolved
		return false
	})

	return picked
}

func looksLikeArticleAnchor(text string) bool {
	trimmed := strings.Join(strings.Fields(text), " ")
	if len(trimmed) > readMoreTextMinLength {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, hint := range readMoreHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func acceptOffDomain(raw string, base *url.URL, redirectorHost string) string {
	resolved := resolveRef(strings.TrimSpace(raw), base)
	if resolved == "" {
		return ""
	}
	parsed, err := url.Parse(resolved)
	if err != nil {
		return ""
	}
	if onDomain(parsed.Hostname(), redirectorHost) {
		return ""
	}
	return resolved
}

func onDomain(host, domain string) bool {
	host = strings.ToLower(host)
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
