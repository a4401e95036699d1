package db

import (
	"context"
	"fmt"
	"time"
)

// UpsertMarket creates or fully refreshes a market by its ticker. Every
// mutable field is replaced; ticker and event-ticker identity are stable.
func (p *Pool) UpsertMarket(ctx context.Context, m *Market) error {
	const q = `
INSERT INTO tickerwire.markets (
	market_ticker,
	event_ticker,
	name,
	yes_sub_title,
	no_sub_title,
	status,
	yes_price,
	no_price,
	volume,
	expires_at,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
ON CONFLICT (market_ticker) DO UPDATE SET
	event_ticker = EXCLUDED.event_ticker,
	name = EXCLUDED.name,
	yes_sub_title = EXCLUDED.yes_sub_title,
	no_sub_title = EXCLUDED.no_sub_title,
	status = EXCLUDED.status,
	yes_price = EXCLUDED.yes_price,
	no_price = EXCLUDED.no_price,
	volume = EXCLUDED.volume,
	expires_at = EXCLUDED.expires_at,
	updated_at = EXCLUDED.updated_at
`

	if _, err := p.Exec(ctx, q,
		m.MarketTicker,
		m.EventTicker,
		m.Name,
		m.YesSubTitle,
		m.NoSubTitle,
		m.Status,
		m.YesPrice,
		m.NoPrice,
		m.Volume,
		m.ExpiresAt,
		m.CreatedAt,
	); err != nil {
		return fmt.Errorf("upsert market %s: %w", m.MarketTicker, err)
	}
	return nil
}

// DeleteExpiredMarkets removes markets whose expiry is strictly past.
func (p *Pool) DeleteExpiredMarkets(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM tickerwire.markets
WHERE expires_at IS NOT NULL AND expires_at < $1
`

	tag, err := p.Exec(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired markets: %w", err)
	}
	return tag.RowsAffected(), nil
}
