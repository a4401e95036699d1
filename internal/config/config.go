package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"TW_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"TW_DB_MAX_CONNS" default:"8"`

	UpstreamBaseURL      string `envconfig:"UPSTREAM_BASE_URL" default:"https://api.elections.kalshi.com/trade-api/v2"`
	UpstreamPageSize     int    `envconfig:"UPSTREAM_PAGE_SIZE" default:"200"`
	UpstreamMaxRecords   int    `envconfig:"UPSTREAM_MAX_RECORDS" default:"10000"`
	UpstreamStatusFilter string `envconfig:"UPSTREAM_STATUS_FILTER" default:"open"`
	UpstreamTimeoutSecs  int    `envconfig:"UPSTREAM_TIMEOUT_SECS" default:"15"`

	FeedBaseURL     string `envconfig:"FEED_BASE_URL" default:"https://news.google.com/rss/search"`
	FeedLanguage    string `envconfig:"FEED_LANGUAGE" default:"en"`
	FeedRegion      string `envconfig:"FEED_REGION" default:"US"`
	FeedLocale      string `envconfig:"FEED_LOCALE" default:"US:en"`
	FeedTimeoutSecs int    `envconfig:"FEED_TIMEOUT_SECS" default:"15"`

	NewsMaxAgeDays  int `envconfig:"NEWS_MAX_AGE_DAYS" default:"30"`
	NewsPerQueryCap int `envconfig:"NEWS_PER_QUERY_CAP" default:"20"`
	DiscoverDelayMS int `envconfig:"DISCOVER_DELAY_MS" default:"1500"`

	ThumbRecentDays      int `envconfig:"THUMB_RECENT_DAYS" default:"7"`
	ThumbRetryAfterHours int `envconfig:"THUMB_RETRY_AFTER_HOURS" default:"72"`
	ThumbBatchSize       int `envconfig:"THUMB_BATCH_SIZE" default:"5"`
	ThumbMaxItems        int `envconfig:"THUMB_MAX_ITEMS" default:"100"`
	ThumbFetchTimeoutSec int `envconfig:"THUMB_FETCH_TIMEOUT_SECS" default:"12"`
	BrowserPoolSize      int `envconfig:"BROWSER_POOL_SIZE" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("TW_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("TW_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("TW_DB_MIN_CONNS (%d) cannot exceed TW_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.UpstreamBaseURL) == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if c.UpstreamPageSize < 1 || c.UpstreamPageSize > 200 {
		return fmt.Errorf("UPSTREAM_PAGE_SIZE must be between 1 and 200")
	}
	if c.UpstreamMaxRecords < 1 {
		return fmt.Errorf("UPSTREAM_MAX_RECORDS must be >= 1")
	}
	if strings.TrimSpace(c.FeedBaseURL) == "" {
		return fmt.Errorf("FEED_BASE_URL is required")
	}
	if c.NewsMaxAgeDays < 1 {
		return fmt.Errorf("NEWS_MAX_AGE_DAYS must be >= 1")
	}
	if c.NewsPerQueryCap < 1 {
		return fmt.Errorf("NEWS_PER_QUERY_CAP must be >= 1")
	}
	if c.ThumbBatchSize < 1 {
		return fmt.Errorf("THUMB_BATCH_SIZE must be >= 1")
	}
	if c.BrowserPoolSize < 1 {
		return fmt.Errorf("BROWSER_POOL_SIZE must be >= 1")
	}
	return nil
}
