package pipeline

import (
	"context"
	"fmt"
	"time"

	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/globaltime"
	"horse.fit/tickerwire/internal/keywords"
	"horse.fit/tickerwire/internal/newsfeed"
	"horse.fit/tickerwire/internal/urlnorm"
)

// DiscoverResult summarizes one news discovery run.
type DiscoverResult struct {
	EventsProcessed int
	EventsFailed    int
	Linked          int
	NewArticles     int
	AlreadyLinked   int
	Stale           int
	OtherLanguage   int
	Failed          int
}

type eventDiscovery struct {
	Linked        int
	NewArticles   int
	AlreadyLinked int
	Stale         int
	OtherLanguage int
	Failed        int
}

// DiscoverNews runs discovery for every event that currently carries
// keywords, with a politeness delay between events. Per-event failures
// are isolated; only an unreachable store aborts the run.
func (s *Service) DiscoverNews(ctx context.Context) (DiscoverResult, error) {
	var result DiscoverResult

	events, err := s.pool.ListEventsWithKeywords(ctx)
	if err != nil {
		return result, fmt.Errorf("list events for discovery: %w", err)
	}

	delay := time.Duration(s.cfg.DiscoverDelayMS) * time.Millisecond
	for i := range events {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			sleepCtx(ctx, delay)
		}

		discovery, err := s.discoverForEvent(ctx, &events[i])
		if err != nil {
			s.logger.Error().Err(err).Str("event_ticker", events[i].EventTicker).Msg("event discovery failed")
			result.EventsFailed++
			continue
		}
		result.EventsProcessed++
		result.Linked += discovery.Linked
		result.NewArticles += discovery.NewArticles
		result.AlreadyLinked += discovery.AlreadyLinked
		result.Stale += discovery.Stale
		result.OtherLanguage += discovery.OtherLanguage
		result.Failed += discovery.Failed
	}

	s.logger.Info().
		Int("events_processed", result.EventsProcessed).
		Int("events_failed", result.EventsFailed).
		Int("linked", result.Linked).
		Int("new_articles", result.NewArticles).
		Int("already_linked", result.AlreadyLinked).
		Int("stale", result.Stale).
		Int("other_language", result.OtherLanguage).
		Int("failed", result.Failed).
		Msg("news discovery completed")

	return result, nil
}

// candidateVerdict classifies one feed item against the accept rules
// that need no store access.
type candidateVerdict int

const (
	verdictAccept candidateVerdict = iota
	verdictCapReached
	verdictNoURL
	verdictDuplicate
	verdictStale
)

// screenCandidate applies the store-independent accept rules in order:
// the per-query accept budget, canonical-URL validity, the per-event
// seen-set and the recency cutoff. Items with no timestamp pass the
// cutoff as unknown-but-acceptable. URLs are recorded in seen as soon
// as they pass the duplicate check, so a stale item stays screened when
// a later query surfaces it again.
func screenCandidate(
	link string,
	publishedAt *time.Time,
	cutoff time.Time,
	seen map[string]struct{},
	accepted, budget int,
) (string, candidateVerdict) {
	if accepted >= budget {
		return "", verdictCapReached
	}
	canonical := urlnorm.Canonicalize(link)
	if canonical == "" {
		return "", verdictNoURL
	}
	if _, dup := seen[canonical]; dup {
		return "", verdictDuplicate
	}
	seen[canonical] = struct{}{}

	if publishedAt != nil && publishedAt.Before(cutoff) {
		return canonical, verdictStale
	}
	return canonical, verdictAccept
}

// storeOutcome classifies what storing one accepted candidate produced.
type storeOutcome int

const (
	storeFailed storeOutcome = iota
	storeInsertedNew
	storeAlreadyLinked
	storeLinkedNow
)

// tallyOutcome updates the per-event counters for one store outcome and
// reports whether the candidate consumed per-query accept budget.
// Failures consume nothing: no article was accepted.
func tallyOutcome(d *eventDiscovery, outcome storeOutcome) bool {
	switch outcome {
	case storeInsertedNew:
		d.NewArticles++
		d.Linked++
		return true
	case storeAlreadyLinked:
		d.AlreadyLinked++
		return true
	case storeLinkedNow:
		d.Linked++
		return true
	default:
		d.Failed++
		return false
	}
}

// discoverForEvent queries the feed with the event's search strategies,
// deduplicates candidates by canonical URL, upserts each article with
// at-most-once event linkage, and finishes with a single batched union
// into the event's related_news.
func (s *Service) discoverForEvent(ctx context.Context, event *db.Event) (eventDiscovery, error) {
	var d eventDiscovery

	queries := keywords.SearchQueries(event.Title, event.Category, event.KeyWords)
	if len(queries) == 0 {
		return d, nil
	}

	cutoff := globaltime.DaysAgo(s.cfg.NewsMaxAgeDays)
	seen := make(map[string]struct{})
	var linkedIDs []string

	for _, query := range queries {
		items, err := s.feed.Search(ctx, query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("feed query failed")
			continue
		}

		accepted := 0
		for i := range items {
			item := &items[i]
			canonical, verdict := screenCandidate(item.Link, item.PublishedAt, cutoff, seen, accepted, s.cfg.NewsPerQueryCap)
			if verdict == verdictCapReached {
				break
			}
			switch verdict {
			case verdictStale:
				d.Stale++
			case verdictNoURL, verdictDuplicate:
			case verdictAccept:
				if !s.languageAllowed(item.Title + " " + item.Snippet) {
					d.OtherLanguage++
					continue
				}
				ids, counted := s.storeCandidate(ctx, event, item, canonical, &d)
				if counted {
					accepted++
				}
				linkedIDs = append(linkedIDs, ids...)
			}
		}
	}

	// Single batched set-union, skipped entirely when nothing new
	// linked this run.
	if len(linkedIDs) > 0 {
		if err := s.pool.UnionRelatedNews(ctx, event.EventTicker, linkedIDs, globaltime.UTC()); err != nil {
			return d, err
		}
	}

	return d, nil
}

// storeCandidate upserts one screened article with at-most-once event
// linkage. The bool return reports whether the candidate counted
// against the per-query accept budget.
func (s *Service) storeCandidate(
	ctx context.Context,
	event *db.Event,
	item *newsfeed.Item,
	canonical string,
	d *eventDiscovery,
) ([]string, bool) {
	id := urlnorm.ContentID(canonical)
	now := globaltime.UTC()

	doc := &db.News{
		ID:           id,
		Title:        item.Title,
		CanonicalURL: canonical,
		Source:       item.Source,
		Snippet:      item.Snippet,
		PublishedAt:  item.PublishedAt,
		EventIDs:     []string{event.EventTicker},
		CreatedAt:    now,
	}

	stored, inserted, err := s.pool.InsertOrFetchNews(ctx, doc)
	if err != nil {
		s.logger.Error().Err(err).Str("news_id", id).Msg("news upsert failed")
		return nil, tallyOutcome(d, storeFailed)
	}

	if inserted {
		return []string{id}, tallyOutcome(d, storeInsertedNew)
	}

	if containsString(stored.EventIDs, event.EventTicker) {
		return nil, tallyOutcome(d, storeAlreadyLinked)
	}

	if err := s.pool.LinkNewsToEvent(ctx, id, event.EventTicker, item.Title, item.Snippet, item.PublishedAt, now); err != nil {
		s.logger.Error().Err(err).Str("news_id", id).Msg("news linkage failed")
		return nil, tallyOutcome(d, storeFailed)
	}
	return []string{id}, tallyOutcome(d, storeLinkedNow)
}
