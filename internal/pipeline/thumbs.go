package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/globaltime"
	"horse.fit/tickerwire/internal/scrape"
	"horse.fit/tickerwire/internal/urlnorm"
)

const (
	interBatchPause = 2 * time.Second
	snippetMaxChars = 500
)

// ThumbResult summarizes one thumbnail backfill run.
type ThumbResult struct {
	Candidates int
	Updated    int
	Failed     int
}

type thumbOutcome struct {
	thumbnail string
	snippet   string
}

type thumbWriteOp struct {
	id        string
	found     bool
	thumbnail string
	snippet   string
}

// planBatchWrites maps each article in a processed batch to exactly one
// terminal write: found with the extracted image, or not-found. A
// snippet refresh rides along only when extraction produced text for an
// article whose stored snippet is empty.
func planBatchWrites(batch []db.News, outcomes []thumbOutcome) []thumbWriteOp {
	ops := make([]thumbWriteOp, 0, len(batch))
	for i := range batch {
		op := thumbWriteOp{id: batch[i].ID}
		outcome := outcomes[i]
		if outcome.thumbnail != "" {
			op.found = true
			op.thumbnail = outcome.thumbnail
			if batch[i].Snippet == "" && outcome.snippet != "" {
				op.snippet = outcome.snippet
			}
		}
		ops = append(ops, op)
	}
	return ops
}

// BackfillThumbnails selects a bounded, newest-first set of articles
// missing usable thumbnails, resolves each through the redirector and
// scrapes a representative image. Every processed article gets exactly
// one terminal write: success sets the thumbnail, failure records
// not-found — both stamp thumbnail_fetched_at so the item is not
// re-selected until the retry window elapses.
func (s *Service) BackfillThumbnails(ctx context.Context) (ThumbResult, error) {
	var result ThumbResult

	candidates, err := s.pool.ThumbnailCandidates(
		ctx,
		globaltime.DaysAgo(s.cfg.ThumbRecentDays),
		globaltime.HoursAgo(s.cfg.ThumbRetryAfterHours),
		scrape.PlaceholderPatterns(),
		s.cfg.ThumbMaxItems,
	)
	if err != nil {
		return result, fmt.Errorf("select thumbnail candidates: %w", err)
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		s.logger.Info().Msg("thumbnail backfill found no candidates")
		return result, nil
	}

	resolver := scrape.NewResolver(scrape.ResolverOptions{
		PoolSize:       s.cfg.BrowserPoolSize,
		RedirectorHost: urlnorm.DefaultRedirectorHost,
	}, s.logger)
	defer resolver.Close()

	batchSize := s.cfg.ThumbBatchSize
	for start := 0; start < len(candidates); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+batchSize, len(candidates))
		batch := candidates[start:end]

		outcomes := make([]thumbOutcome, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = s.processThumbCandidate(ctx, resolver, &batch[i])
			}(i)
		}
		wg.Wait()

		// Batch N's writes complete before batch N+1 begins.
		now := globaltime.UTC()
		for _, op := range planBatchWrites(batch, outcomes) {
			if op.found {
				if err := s.pool.MarkThumbnailFound(ctx, op.id, op.thumbnail, now); err != nil {
					s.logger.Error().Err(err).Str("news_id", op.id).Msg("thumbnail success write failed")
					result.Failed++
					continue
				}
				if op.snippet != "" {
					if err := s.pool.UpdateNewsSnippet(ctx, op.id, op.snippet, now); err != nil {
						s.logger.Warn().Err(err).Str("news_id", op.id).Msg("snippet refresh failed")
					}
				}
				result.Updated++
				continue
			}

			if err := s.pool.MarkThumbnailNotFound(ctx, op.id, now); err != nil {
				s.logger.Error().Err(err).Str("news_id", op.id).Msg("thumbnail failure write failed")
			}
			result.Failed++
		}

		if end < len(candidates) {
			sleepCtx(ctx, interBatchPause)
		}
	}

	s.logger.Info().
		Int("candidates", result.Candidates).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("thumbnail backfill completed")

	return result, nil
}

// processThumbCandidate runs the two per-article stages. Neither stage
// throws past its boundary: resolution falls back to the original link
// and extraction failure yields an empty outcome.
func (s *Service) processThumbCandidate(ctx context.Context, resolver *scrape.Resolver, article *db.News) thumbOutcome {
	resolved := resolver.Resolve(ctx, article.CanonicalURL)

	htmlBody, base, err := scrape.FetchArticleHTML(ctx, resolved, scrape.FetchOptions{
		Timeout: time.Duration(s.cfg.ThumbFetchTimeoutSec) * time.Second,
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("news_id", article.ID).Str("url", resolved).Msg("article fetch failed")
		return thumbOutcome{}
	}

	var outcome thumbOutcome
	if image, ok := scrape.ExtractImage(htmlBody, base); ok {
		outcome.thumbnail = image
	}
	// The page is already in hand; refresh an empty snippet while here.
	if article.Snippet == "" {
		outcome.snippet = scrape.ExtractSnippet(htmlBody, base, snippetMaxChars)
	}
	return outcome
}
