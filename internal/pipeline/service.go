// Package pipeline implements the three enrichment engines: market/event
// sync, news discovery with deduplication, and thumbnail backfill.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"
	"github.com/rs/zerolog"

	"horse.fit/tickerwire/internal/config"
	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/newsfeed"
	"horse.fit/tickerwire/internal/upstream"
)

// minDetectableTextLength guards the language filter: shorter texts give
// the detector too little signal and pass through unfiltered.
const minDetectableTextLength = 20

type Service struct {
	pool     *db.Pool
	cfg      *config.Config
	logger   zerolog.Logger
	upstream *upstream.Client
	feed     *newsfeed.Client
	detector lingua.LanguageDetector
}

func NewService(pool *db.Pool, cfg *config.Config, logger zerolog.Logger) *Service {
	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamStatusFilter, upstream.Options{
		Timeout: time.Duration(cfg.UpstreamTimeoutSecs) * time.Second,
	})
	feedClient := newsfeed.NewClient(cfg.FeedBaseURL, cfg.FeedLanguage, cfg.FeedRegion, cfg.FeedLocale, newsfeed.Options{
		Timeout: time.Duration(cfg.FeedTimeoutSecs) * time.Second,
	})

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
		).
		Build()

	return &Service{
		pool:     pool,
		cfg:      cfg,
		logger:   logger,
		upstream: upstreamClient,
		feed:     feedClient,
		detector: detector,
	}
}

// languageAllowed reports whether article text matches the configured
// feed language. Unknown or too-short text is allowed: the filter only
// drops articles it is confident are in another language.
func (s *Service) languageAllowed(text string) bool {
	if s.detector == nil {
		return true
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minDetectableTextLength {
		return true
	}
	detected, exists := s.detector.DetectLanguageOf(trimmed)
	if !exists {
		return true
	}
	code := strings.ToLower(detected.IsoCode639_1().String())
	return code == strings.ToLower(strings.TrimSpace(s.cfg.FeedLanguage))
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
