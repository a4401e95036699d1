package db

import (
	"time"

	"github.com/lib/pq"
)

// Event maps tickerwire.events. The upstream-assigned event ticker is the
// natural key; market_tickers and related_news are set-valued references
// maintained with array set-union updates.
type Event struct {
	EventTicker   string         `gorm:"column:event_ticker;type:text;primaryKey"`
	Title         string         `gorm:"column:title;type:text;not null"`
	Category      string         `gorm:"column:category;type:text;not null;default:''"`
	SubTitle      string         `gorm:"column:sub_title;type:text;not null;default:''"`
	Status        string         `gorm:"column:status;type:text;not null;default:''"`
	ExpiresAt     *time.Time     `gorm:"column:expires_at;type:timestamptz"`
	KeyWords      pq.StringArray `gorm:"column:key_words;type:text[];not null;default:'{}'"`
	MarketTickers pq.StringArray `gorm:"column:market_tickers;type:text[];not null;default:'{}'"`
	RelatedNews   pq.StringArray `gorm:"column:related_news;type:text[];not null;default:'{}'"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Event) TableName() string { return "tickerwire.events" }

// Market maps tickerwire.markets. Every sync cycle replaces all mutable
// fields; expires_at comes verbatim from upstream.
type Market struct {
	MarketTicker string     `gorm:"column:market_ticker;type:text;primaryKey"`
	EventTicker  string     `gorm:"column:event_ticker;type:text;not null"`
	Name         string     `gorm:"column:name;type:text;not null;default:''"`
	YesSubTitle  string     `gorm:"column:yes_sub_title;type:text;not null;default:''"`
	NoSubTitle   string     `gorm:"column:no_sub_title;type:text;not null;default:''"`
	Status       string     `gorm:"column:status;type:text;not null;default:''"`
	YesPrice     int64      `gorm:"column:yes_price;type:bigint;not null;default:0"`
	NoPrice      int64      `gorm:"column:no_price;type:bigint;not null;default:0"`
	Volume       int64      `gorm:"column:volume;type:bigint;not null;default:0"`
	ExpiresAt    *time.Time `gorm:"column:expires_at;type:timestamptz"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Market) TableName() string { return "tickerwire.markets" }

// News maps tickerwire.news. The id is a content hash of the canonical
// article URL, so any two articles canonicalizing to the same URL
// collapse into one row regardless of which event discovered them.
type News struct {
	ID                 string         `gorm:"column:id;type:text;primaryKey"`
	Title              string         `gorm:"column:title;type:text;not null"`
	CanonicalURL       string         `gorm:"column:canonical_url;type:text;not null"`
	Source             string         `gorm:"column:source;type:text;not null;default:''"`
	Snippet            string         `gorm:"column:snippet;type:text;not null;default:''"`
	PublishedAt        *time.Time     `gorm:"column:published_at;type:timestamptz"`
	Thumbnail          *string        `gorm:"column:thumbnail;type:text"`
	ThumbnailNotFound  bool           `gorm:"column:thumbnail_not_found;type:boolean;not null;default:false"`
	ThumbnailFetchedAt *time.Time     `gorm:"column:thumbnail_fetched_at;type:timestamptz"`
	EventIDs           pq.StringArray `gorm:"column:event_ids;type:text[];not null;default:'{}'"`
	CreatedAt          time.Time      `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (News) TableName() string { return "tickerwire.news" }

func autoMigrateModels() []any {
	return []any{
		&Event{},
		&Market{},
		&News{},
	}
}
