// Package newsfeed queries the keyword-search RSS feed and maps its
// entries into neutral items for the discovery pipeline.
package newsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "tickerwire/1.0 (+https://horse.fit)"
)

// Item is one feed entry. PublishedAt is nil when the feed gave no
// parseable timestamp; the recency filter treats that as acceptable.
type Item struct {
	Title       string
	Link        string
	Source      string
	Snippet     string
	PublishedAt *time.Time
}

type Client struct {
	baseURL    string
	language   string
	region     string
	locale     string
	parser     *gofeed.Parser
	httpClient *http.Client
}

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(baseURL, language, region, locale string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	parser := gofeed.NewParser()
	parser.UserAgent = defaultUserAgent
	parser.Client = httpClient

	return &Client{
		baseURL:    strings.TrimSpace(baseURL),
		language:   strings.TrimSpace(language),
		region:     strings.TrimSpace(region),
		locale:     strings.TrimSpace(locale),
		parser:     parser,
		httpClient: httpClient,
	}
}

// QueryURL builds the keyword-search feed URL for one query string.
func (c *Client) QueryURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	if c.language != "" {
		params.Set("hl", c.language)
	}
	if c.region != "" {
		params.Set("gl", c.region)
	}
	if c.locale != "" {
		params.Set("ceid", c.locale)
	}
	return c.baseURL + "?" + params.Encode()
}

// Search fetches the feed for one query and returns its items in feed
// order.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	if c == nil || c.parser == nil {
		return nil, fmt.Errorf("feed client is not initialized")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	feed, err := c.parser.ParseURLWithContext(c.QueryURL(query), ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed for %q: %w", query, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			continue
		}
		items = append(items, Item{
			Title:       strings.TrimSpace(entry.Title),
			Link:        link,
			Source:      itemSource(entry, link),
			Snippet:     StripMarkup(entry.Description),
			PublishedAt: itemPublishedAt(entry),
		})
	}

	return items, nil
}

func itemSource(entry *gofeed.Item, link string) string {
	if entry.Author != nil {
		if name := strings.TrimSpace(entry.Author.Name); name != "" {
			return name
		}
	}
	for _, author := range entry.Authors {
		if author == nil {
			continue
		}
		if name := strings.TrimSpace(author.Name); name != "" {
			return name
		}
	}
	if parsed, err := url.Parse(link); err == nil {
		return parsed.Hostname()
	}
	return ""
}

func itemPublishedAt(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		utc := entry.PublishedParsed.UTC()
		return &utc
	}
	raw := strings.TrimSpace(entry.Published)
	if raw == "" {
		return nil
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes HTML tags and collapses whitespace; feed
// descriptions routinely arrive as markup fragments.
func StripMarkup(raw string) string {
	cleaned := tagPattern.ReplaceAllString(raw, " ")
	cleaned = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ").Replace(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}
