package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const newsColumns = `id, title, canonical_url, source, snippet, published_at, thumbnail, thumbnail_not_found, thumbnail_fetched_at, event_ids, created_at, updated_at`

// InsertOrFetchNews attempts to insert a news document and, when the
// identity constraint reports it already exists, re-reads the winner.
// This is the upsert-or-fetch primitive that makes concurrent discovery
// runs safe: the losing inserter falls through to the stored document
// instead of erroring.
func (p *Pool) InsertOrFetchNews(ctx context.Context, n *News) (*News, bool, error) {
	const q = `
INSERT INTO tickerwire.news (
	id,
	title,
	canonical_url,
	source,
	snippet,
	published_at,
	thumbnail,
	thumbnail_not_found,
	thumbnail_fetched_at,
	event_ids,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, NULL, FALSE, NULL, $7, $8, $8)
ON CONFLICT (id) DO NOTHING
`

	tag, err := p.Exec(ctx, q,
		n.ID,
		n.Title,
		n.CanonicalURL,
		n.Source,
		n.Snippet,
		n.PublishedAt,
		textArray(n.EventIDs),
		n.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert news %s: %w", n.ID, err)
	}
	if tag.RowsAffected() == 1 {
		return n, true, nil
	}

	stored, err := p.GetNews(ctx, n.ID)
	if err != nil {
		return nil, false, fmt.Errorf("re-fetch news %s after duplicate insert: %w", n.ID, err)
	}
	return stored, false, nil
}

func (p *Pool) GetNews(ctx context.Context, id string) (*News, error) {
	q := `
SELECT ` + newsColumns + `
FROM tickerwire.news
WHERE id = $1
`

	var n News
	if err := scanNews(p.QueryRow(ctx, q, id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// linkNewsEventSQL refreshes the mutable article fields and adds the
// event to event_ids with set semantics, in one atomic statement. Title
// and snippet only replace stored values when the feed supplied
// non-empty ones; a feed item with a blank title must not blank the
// stored article.
const linkNewsEventSQL = `
UPDATE tickerwire.news
SET title = CASE WHEN $2 <> '' THEN $2 ELSE title END,
	snippet = CASE WHEN $3 <> '' THEN $3 ELSE snippet END,
	published_at = COALESCE($4, published_at),
	event_ids = (
		SELECT COALESCE(array_agg(DISTINCT v ORDER BY v), '{}')
		FROM unnest(event_ids || ARRAY[$5]::text[]) AS v
	),
	updated_at = $6
WHERE id = $1
`

func (p *Pool) LinkNewsToEvent(ctx context.Context, newsID, eventTicker, title, snippet string, publishedAt *time.Time, now time.Time) error {
	if _, err := p.Exec(ctx, linkNewsEventSQL, newsID, title, snippet, publishedAt, eventTicker, now); err != nil {
		return fmt.Errorf("link news %s to event %s: %w", newsID, eventTicker, err)
	}
	return nil
}

// ThumbnailCandidates selects the bounded, newest-first set of articles
// the backfill engine should process: articles without a usable
// thumbnail, fresh enough to matter, and either never attempted, past
// the retry window, or carrying a placeholder that always qualifies.
func (p *Pool) ThumbnailCandidates(ctx context.Context, recentCutoff, retryCutoff time.Time, placeholderPatterns []string, limit int) ([]News, error) {
	q := `
SELECT ` + newsColumns + `
FROM tickerwire.news
WHERE (thumbnail IS NULL OR thumbnail = '' OR thumbnail LIKE ANY($3::text[]))
	AND (created_at >= $1 OR updated_at >= $1)
	AND (
		thumbnail_fetched_at IS NULL
		OR thumbnail_fetched_at < $2
		OR thumbnail LIKE ANY($3::text[])
	)
	AND (
		NOT thumbnail_not_found
		OR thumbnail_fetched_at < $2
		OR thumbnail LIKE ANY($3::text[])
	)
ORDER BY created_at DESC
LIMIT $4
`

	rows, err := p.Query(ctx, q, recentCutoff, retryCutoff, pq.Array(placeholderPatterns), limit)
	if err != nil {
		return nil, fmt.Errorf("select thumbnail candidates: %w", err)
	}
	defer rows.Close()

	var items []News
	for rows.Next() {
		var n News
		if err := scanNewsRows(rows, &n); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thumbnail candidates: %w", err)
	}
	return items, nil
}

// MarkThumbnailFound records a successful backfill: thumbnail set,
// not-found flag cleared, fetch timestamp stamped.
func (p *Pool) MarkThumbnailFound(ctx context.Context, id, thumbnailURL string, now time.Time) error {
	const q = `
UPDATE tickerwire.news
SET thumbnail = $2,
	thumbnail_not_found = FALSE,
	thumbnail_fetched_at = $3,
	updated_at = $3
WHERE id = $1
`

	if _, err := p.Exec(ctx, q, id, thumbnailURL, now); err != nil {
		return fmt.Errorf("mark thumbnail found for news %s: %w", id, err)
	}
	return nil
}

// MarkThumbnailNotFound records a failed backfill. Stamping
// thumbnail_fetched_at here is what suppresses re-selection until the
// retry window elapses.
func (p *Pool) MarkThumbnailNotFound(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE tickerwire.news
SET thumbnail = NULL,
	thumbnail_not_found = TRUE,
	thumbnail_fetched_at = $2,
	updated_at = $2
WHERE id = $1
`

	if _, err := p.Exec(ctx, q, id, now); err != nil {
		return fmt.Errorf("mark thumbnail not found for news %s: %w", id, err)
	}
	return nil
}

// UpdateNewsSnippet refreshes the stored snippet from scraped article
// content. Empty extractions leave the existing snippet alone.
func (p *Pool) UpdateNewsSnippet(ctx context.Context, id, snippet string, now time.Time) error {
	if snippet == "" {
		return nil
	}

	const q = `
UPDATE tickerwire.news
SET snippet = $2,
	updated_at = $3
WHERE id = $1 AND snippet = ''
`

	if _, err := p.Exec(ctx, q, id, snippet, now); err != nil {
		return fmt.Errorf("update snippet for news %s: %w", id, err)
	}
	return nil
}

func scanNews(row *Row, n *News) error {
	return row.Scan(
		&n.ID,
		&n.Title,
		&n.CanonicalURL,
		&n.Source,
		&n.Snippet,
		&n.PublishedAt,
		&n.Thumbnail,
		&n.ThumbnailNotFound,
		&n.ThumbnailFetchedAt,
		&n.EventIDs,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
}

func scanNewsRows(rows *Rows, n *News) error {
	return rows.Scan(
		&n.ID,
		&n.Title,
		&n.CanonicalURL,
		&n.Source,
		&n.Snippet,
		&n.PublishedAt,
		&n.Thumbnail,
		&n.ThumbnailNotFound,
		&n.ThumbnailFetchedAt,
		&n.EventIDs,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
}
