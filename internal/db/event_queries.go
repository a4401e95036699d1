package db

import (
	"context"
	"fmt"
	"time"
)

// UpsertSyncedEvent inserts a newly sighted event or refreshes an
// existing one in place. Keywords are computed once at first sighting
// and never clobbered; the market-ticker set is only replaced when the
// current sync cycle actually produced markets, so a transient empty
// nested-markets response cannot wipe known links.
func (p *Pool) UpsertSyncedEvent(ctx context.Context, ev *Event, hasMarkets bool) (inserted bool, err error) {
	const q = `
INSERT INTO tickerwire.events (
	event_ticker,
	title,
	category,
	sub_title,
	status,
	expires_at,
	key_words,
	market_tickers,
	related_news,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '{}', $9, $9)
ON CONFLICT (event_ticker) DO UPDATE SET
	title = EXCLUDED.title,
	category = EXCLUDED.category,
	sub_title = EXCLUDED.sub_title,
	status = EXCLUDED.status,
	expires_at = EXCLUDED.expires_at,
	market_tickers = CASE WHEN $10 THEN EXCLUDED.market_tickers ELSE tickerwire.events.market_tickers END,
	updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)
`

	err = p.QueryRow(ctx, q,
		ev.EventTicker,
		ev.Title,
		ev.Category,
		ev.SubTitle,
		ev.Status,
		ev.ExpiresAt,
		textArray(ev.KeyWords),
		textArray(ev.MarketTickers),
		ev.CreatedAt,
		hasMarkets,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert event %s: %w", ev.EventTicker, err)
	}
	return inserted, nil
}

// DeleteExpiredEvents removes every event whose expiry is strictly in
// the past. Events without an expiry are never removed by this rule.
func (p *Pool) DeleteExpiredEvents(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM tickerwire.events
WHERE expires_at IS NOT NULL AND expires_at < $1
`

	tag, err := p.Exec(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListEventsWithKeywords returns every event carrying a non-empty
// keyword set, the Discovery Engine's work list.
func (p *Pool) ListEventsWithKeywords(ctx context.Context) ([]Event, error) {
	const q = `
SELECT event_ticker, title, category, sub_title, status, expires_at, key_words, market_tickers, related_news, created_at, updated_at
FROM tickerwire.events
WHERE cardinality(key_words) > 0
ORDER BY event_ticker
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list events with keywords: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(
			&ev.EventTicker,
			&ev.Title,
			&ev.Category,
			&ev.SubTitle,
			&ev.Status,
			&ev.ExpiresAt,
			&ev.KeyWords,
			&ev.MarketTickers,
			&ev.RelatedNews,
			&ev.CreatedAt,
			&ev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}

// UnionRelatedNews merges the given news ids into the event's
// related_news with set semantics, in one atomic statement.
func (p *Pool) UnionRelatedNews(ctx context.Context, eventTicker string, newsIDs []string, now time.Time) error {
	if len(newsIDs) == 0 {
		return nil
	}

	const q = `
UPDATE tickerwire.events
SET related_news = (
	SELECT COALESCE(array_agg(DISTINCT v ORDER BY v), '{}')
	FROM unnest(related_news || $2::text[]) AS v
),
	updated_at = $3
WHERE event_ticker = $1
`

	if _, err := p.Exec(ctx, q, eventTicker, textArray(newsIDs), now); err != nil {
		return fmt.Errorf("union related_news for event %s: %w", eventTicker, err)
	}
	return nil
}
