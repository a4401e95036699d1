package pipeline

import (
	"context"
	"time"

	"github.com/araddon/dateparse"

	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/globaltime"
	"horse.fit/tickerwire/internal/keywords"
	payloadschema "horse.fit/tickerwire/schema"
)

// SyncResult summarizes one market/event sync run.
type SyncResult struct {
	PagesFetched    int
	EventsCreated   int
	EventsUpdated   int
	EventsSkipped   int
	MarketsUpserted int
	EventsDeleted   int64
	MarketsDeleted  int64
	Aborted         bool
}

// SyncMarkets pages through the upstream events endpoint in cursor
// order, upserting events and their nested markets, then sweeps expired
// records. A page-fetch failure aborts the remaining pages of this run;
// the failure is logged, not raised, so the next scheduled tick simply
// retries. The returned error is reserved for a fatal store failure.
func (s *Service) SyncMarkets(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	cursor := ""
	processed := 0
	for {
		page, err := s.upstream.FetchEventsPage(ctx, cursor, s.cfg.UpstreamPageSize)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int("pages_fetched", result.PagesFetched).
				Msg("sync page fetch failed; aborting remaining pages")
			result.Aborted = true
			break
		}
		result.PagesFetched++

		for _, raw := range page.Events {
			event, err := payloadschema.ValidateEventPayload(raw)
			if err != nil {
				s.logger.Warn().Err(err).Msg("upstream event failed schema validation; skipped")
				result.EventsSkipped++
				continue
			}
			s.syncOneEvent(ctx, event, &result)
			processed++
		}

		if page.Cursor == "" {
			break
		}
		if processed >= s.cfg.UpstreamMaxRecords {
			s.logger.Warn().
				Int("processed", processed).
				Int("cap", s.cfg.UpstreamMaxRecords).
				Msg("per-run record cap reached; stopping pagination")
			break
		}
		cursor = page.Cursor
	}

	// The expiry sweep runs once per run, strictly after the page loop.
	now := globaltime.UTC()
	if deleted, err := s.pool.DeleteExpiredEvents(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("expired event sweep failed")
	} else {
		result.EventsDeleted = deleted
	}
	if deleted, err := s.pool.DeleteExpiredMarkets(ctx, now); err != nil {
		s.logger.Error().Err(err).Msg("expired market sweep failed")
	} else {
		result.MarketsDeleted = deleted
	}

	s.logger.Info().
		Int("pages", result.PagesFetched).
		Int("events_created", result.EventsCreated).
		Int("events_updated", result.EventsUpdated).
		Int("events_skipped", result.EventsSkipped).
		Int("markets_upserted", result.MarketsUpserted).
		Int64("events_deleted", result.EventsDeleted).
		Int64("markets_deleted", result.MarketsDeleted).
		Bool("aborted", result.Aborted).
		Msg("market sync completed")

	return result, nil
}

func (s *Service) syncOneEvent(ctx context.Context, event *payloadschema.UpstreamEvent, result *SyncResult) {
	now := globaltime.UTC()

	marketTickers := make([]string, 0, len(event.Markets))
	var maxMarketExpiry *time.Time
	for _, m := range event.Markets {
		expiresAt := parseUpstreamTime(m.ExpirationTime)
		market := &db.Market{
			MarketTicker: m.Ticker,
			EventTicker:  event.EventTicker,
			Name:         m.Title,
			YesSubTitle:  m.YesSubTitle,
			NoSubTitle:   m.NoSubTitle,
			Status:       m.Status,
			YesPrice:     m.YesBid,
			NoPrice:      m.NoBid,
			Volume:       m.Volume,
			ExpiresAt:    expiresAt,
			CreatedAt:    now,
		}
		if err := s.pool.UpsertMarket(ctx, market); err != nil {
			s.logger.Error().Err(err).Str("market_ticker", m.Ticker).Msg("market upsert failed")
			continue
		}
		marketTickers = append(marketTickers, m.Ticker)
		result.MarketsUpserted++
		if expiresAt != nil && (maxMarketExpiry == nil || expiresAt.After(*maxMarketExpiry)) {
			maxMarketExpiry = expiresAt
		}
	}

	row := &db.Event{
		EventTicker:   event.EventTicker,
		Title:         event.Title,
		Category:      event.Category,
		SubTitle:      event.SubTitle,
		Status:        event.Status,
		ExpiresAt:     deriveEventExpiry(event.StrikeDate, maxMarketExpiry),
		KeyWords:      keywords.Extract(event.Title),
		MarketTickers: marketTickers,
		CreatedAt:     now,
	}

	inserted, err := s.pool.UpsertSyncedEvent(ctx, row, len(marketTickers) > 0)
	if err != nil {
		s.logger.Error().Err(err).Str("event_ticker", event.EventTicker).Msg("event upsert failed")
		result.EventsSkipped++
		return
	}
	if inserted {
		result.EventsCreated++
	} else {
		result.EventsUpdated++
	}
}

// deriveEventExpiry picks the event expiry: the upstream strike date
// when present, otherwise the latest market expiration, otherwise nil
// (never expires by this rule alone).
func deriveEventExpiry(strikeDate *string, maxMarketExpiry *time.Time) *time.Time {
	if parsed := parseUpstreamTime(strikeDate); parsed != nil {
		return parsed
	}
	return maxMarketExpiry
}

func parseUpstreamTime(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	trimmed := *raw
	if trimmed == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		utc := ts.UTC()
		return &utc
	}
	if ts, err := dateparse.ParseAny(trimmed); err == nil {
		utc := ts.UTC()
		return &utc
	}
	return nil
}
