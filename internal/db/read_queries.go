package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

const eventColumns = `event_ticker, title, category, sub_title, status, expires_at, key_words, market_tickers, related_news, created_at, updated_at`

// ListEvents returns events sorted by expiration (soonest first, never-
// expiring last), optionally filtered by category.
func (p *Pool) ListEvents(ctx context.Context, category string, limit, offset int) ([]Event, error) {
	q := `
SELECT ` + eventColumns + `
FROM tickerwire.events
WHERE ($1 = '' OR category = $1)
ORDER BY expires_at ASC NULLS LAST, event_ticker
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, q, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetEvent fetches one event by its ticker.
func (p *Pool) GetEvent(ctx context.Context, eventTicker string) (*Event, error) {
	q := `
SELECT ` + eventColumns + `
FROM tickerwire.events
WHERE event_ticker = $1
`

	var ev Event
	err := p.QueryRow(ctx, q, eventTicker).Scan(
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
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// MarketsByEventTickers loads the markets linked to any of the given
// events, grouped by event ticker.
func (p *Pool) MarketsByEventTickers(ctx context.Context, eventTickers []string) (map[string][]Market, error) {
	if len(eventTickers) == 0 {
		return map[string][]Market{}, nil
	}

	const q = `
SELECT market_ticker, event_ticker, name, yes_sub_title, no_sub_title, status, yes_price, no_price, volume, expires_at, created_at, updated_at
FROM tickerwire.markets
WHERE event_ticker = ANY($1::text[])
ORDER BY market_ticker
`

	rows, err := p.Query(ctx, q, pq.Array(eventTickers))
	if err != nil {
		return nil, fmt.Errorf("markets by event tickers: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Market)
	for rows.Next() {
		var m Market
		if err := rows.Scan(
			&m.MarketTicker,
			&m.EventTicker,
			&m.Name,
			&m.YesSubTitle,
			&m.NoSubTitle,
			&m.Status,
			&m.YesPrice,
			&m.NoPrice,
			&m.Volume,
			&m.ExpiresAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		out[m.EventTicker] = append(out[m.EventTicker], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market rows: %w", err)
	}
	return out, nil
}

// NewsByIDs loads news documents by id, newest first.
func (p *Pool) NewsByIDs(ctx context.Context, ids []string) ([]News, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := `
SELECT ` + newsColumns + `
FROM tickerwire.news
WHERE id = ANY($1::text[])
ORDER BY published_at DESC NULLS LAST, id
`

	rows, err := p.Query(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("news by ids: %w", err)
	}
	defer rows.Close()

	return collectNews(rows)
}

// NewsByEvent lists the news linked to one event, newest first.
func (p *Pool) NewsByEvent(ctx context.Context, eventTicker string, limit, offset int) ([]News, error) {
	q := `
SELECT ` + newsColumns + `
FROM tickerwire.news
WHERE event_ids @> ARRAY[$1]::text[]
ORDER BY published_at DESC NULLS LAST, id
LIMIT $2 OFFSET $3
`

	rows, err := p.Query(ctx, q, eventTicker, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("news by event: %w", err)
	}
	defer rows.Close()

	return collectNews(rows)
}

// ListNews lists news documents, newest first.
func (p *Pool) ListNews(ctx context.Context, limit, offset int) ([]News, error) {
	q := `
SELECT ` + newsColumns + `
FROM tickerwire.news
ORDER BY published_at DESC NULLS LAST, id
LIMIT $1 OFFSET $2
`

	rows, err := p.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	return collectNews(rows)
}

func collectEvents(rows *Rows) ([]Event, error) {
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

func collectNews(rows *Rows) ([]News, error) {
	var items []News
	for rows.Next() {
		var n News
		if err := scanNewsRows(rows, &n); err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news rows: %w", err)
	}
	return items, nil
}
