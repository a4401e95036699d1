package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
)

const (
	defaultFetchTimeout  = 12 * time.Second
	defaultBodyByteLimit = 2 * 1024 * 1024
	maxRedirects         = 5

	// Real article hosts routinely reject unadorned Go user agents.
	defaultBrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

type FetchOptions struct {
	Timeout       time.Duration
	BodyByteLimit int64
	UserAgent     string
	HTTPClient    *http.Client
}

// FetchArticleHTML retrieves an article page with a bounded timeout,
// capped redirects and a realistic user agent. The returned base URL is
// the final URL after redirects, for resolving relative references.
func FetchArticleHTML(ctx context.Context, pageURL string, opts FetchOptions) (string, *url.URL, error) {
	page := strings.TrimSpace(pageURL)
	if page == "" {
		return "", nil, fmt.Errorf("page URL is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	bodyLimit := opts.BodyByteLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyByteLimit
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, page, nil)
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultBrowserUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, fmt.Errorf("fetch status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}

	base := resp.Request.URL
	return string(body), base, nil
}

// ExtractSnippet pulls a short readable excerpt out of article HTML.
// Extraction failures degrade to an empty string, never an error.
func ExtractSnippet(htmlBody string, base *url.URL, maxChars int) string {
	if strings.TrimSpace(htmlBody) == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(htmlBody), base)
	if err != nil {
		return ""
	}

	text := collapseText(article.Excerpt())
	if text == "" {
		var rendered bytes.Buffer
		if err := article.RenderText(&rendered); err == nil {
			text = collapseText(rendered.String())
		}
	}
	if text == "" {
		return ""
	}

	if maxChars > 0 {
		runes := []rune(text)
		if len(runes) > maxChars {
			text = strings.TrimSpace(string(runes[:maxChars-1])) + "…"
		}
	}
	return text
}

func collapseText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
