// Package httpapi serves the read API over the documents the pipeline
// engines maintain. It only reads; all writes go through the engines.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/tickerwire/internal/db"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool   *db.Pool
	logger zerolog.Logger
	echo   *echo.Echo
	opts   Options
}

func NewServer(pool *db.Pool, logger zerolog.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		pool:   pool,
		logger: logger,
		echo:   e,
		opts:   opts,
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/api/events", s.handleListEvents)
	e.GET("/api/events/:ticker", s.handleGetEvent)
	e.GET("/api/events/:ticker/news", s.handleEventNews)
	e.GET("/api/news", s.handleListNews)

	return s
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	s.echo.Server.ReadTimeout = s.opts.ReadTimeout
	s.echo.Server.WriteTimeout = s.opts.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info().Str("addr", addr).Msg("read API listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownTimeout := s.opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown read API: %w", err)
	}
	return <-errCh
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.pool.Ping(c.Request().Context()); err != nil {
		return internalError(c, "database unreachable")
	}
	return success(c, map[string]string{"status": "ok"})
}

type eventView struct {
	EventTicker   string       `json:"event_ticker"`
	Title         string       `json:"title"`
	Category      string       `json:"category"`
	SubTitle      string       `json:"sub_title"`
	Status        string       `json:"status"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	KeyWords      []string     `json:"key_words"`
	MarketTickers []string     `json:"market_tickers"`
	Markets       []marketView `json:"markets"`
	News          []newsView   `json:"news"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type marketView struct {
	MarketTicker string     `json:"market_ticker"`
	EventTicker  string     `json:"event_ticker"`
	Name         string     `json:"name"`
	YesSubTitle  string     `json:"yes_sub_title"`
	NoSubTitle   string     `json:"no_sub_title"`
	Status       string     `json:"status"`
	YesPrice     int64      `json:"yes_price"`
	NoPrice      int64      `json:"no_price"`
	Volume       int64      `json:"volume"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

type newsView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CanonicalURL string     `json:"canonical_url"`
	Source       string     `json:"source"`
	Snippet      string     `json:"snippet"`
	PublishedAt  *time.Time `json:"published_at"`
	Thumbnail    *string    `json:"thumbnail"`
	EventIDs     []string   `json:"event_ids"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toMarketView(m db.Market) marketView {
	return marketView{
		MarketTicker: m.MarketTicker,
		EventTicker:  m.EventTicker,
		Name:         m.Name,
		YesSubTitle:  m.YesSubTitle,
		NoSubTitle:   m.NoSubTitle,
		Status:       m.Status,
		YesPrice:     m.YesPrice,
		NoPrice:      m.NoPrice,
		Volume:       m.Volume,
		ExpiresAt:    m.ExpiresAt,
	}
}

func toNewsView(n db.News) newsView {
	return newsView{
		ID:           n.ID,
		Title:        n.Title,
		CanonicalURL: n.CanonicalURL,
		Source:       n.Source,
		Snippet:      n.Snippet,
		PublishedAt:  n.PublishedAt,
		Thumbnail:    n.Thumbnail,
		EventIDs:     n.EventIDs,
		CreatedAt:    n.CreatedAt,
	}
}

func toNewsViews(items []db.News) []newsView {
	views := make([]newsView, 0, len(items))
	for i := range items {
		views = append(views, toNewsView(items[i]))
	}
	return views
}

func (s *Server) handleListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := pageParams(c)
	category := strings.TrimSpace(c.QueryParam("category"))

	events, err := s.pool.ListEvents(ctx, category, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("list events failed")
		return internalError(c, "failed to list events")
	}

	views, err := s.composeEventViews(ctx, events)
	if err != nil {
		s.logger.Error().Err(err).Msg("compose event views failed")
		return internalError(c, "failed to load event relations")
	}

	return success(c, map[string]any{
		"events": views,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	ticker := strings.TrimSpace(c.Param("ticker"))
	if ticker == "" {
		return fail(c, http.StatusBadRequest, "ticker is required")
	}

	event, err := s.pool.GetEvent(ctx, ticker)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "event not found")
		}
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("get event failed")
		return internalError(c, "failed to load event")
	}

	views, err := s.composeEventViews(ctx, []db.Event{*event})
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("compose event view failed")
		return internalError(c, "failed to load event relations")
	}

	return success(c, map[string]any{"event": views[0]})
}

func (s *Server) handleEventNews(c echo.Context) error {
	ctx := c.Request().Context()
	ticker := strings.TrimSpace(c.Param("ticker"))
	if ticker == "" {
		return fail(c, http.StatusBadRequest, "ticker is required")
	}
	limit, offset := pageParams(c)

	news, err := s.pool.NewsByEvent(ctx, ticker, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("event news failed")
		return internalError(c, "failed to list news")
	}

	return success(c, map[string]any{
		"news":   toNewsViews(news),
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleListNews(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := pageParams(c)

	if ticker := strings.TrimSpace(c.QueryParam("event")); ticker != "" {
		news, err := s.pool.NewsByEvent(ctx, ticker, limit, offset)
		if err != nil {
			s.logger.Error().Err(err).Str("ticker", ticker).Msg("news by event failed")
			return internalError(c, "failed to list news")
		}
		return success(c, map[string]any{
			"news":   toNewsViews(news),
			"limit":  limit,
			"offset": offset,
		})
	}

	news, err := s.pool.ListNews(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("list news failed")
		return internalError(c, "failed to list news")
	}

	return success(c, map[string]any{
		"news":   toNewsViews(news),
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) composeEventViews(ctx context.Context, events []db.Event) ([]eventView, error) {
	tickers := make([]string, 0, len(events))
	newsIDs := make([]string, 0)
	for i := range events {
		tickers = append(tickers, events[i].EventTicker)
		newsIDs = append(newsIDs, events[i].RelatedNews...)
	}

	marketsByEvent, err := s.pool.MarketsByEventTickers(ctx, tickers)
	if err != nil {
		return nil, err
	}

	newsByID := make(map[string]db.News)
	if len(newsIDs) > 0 {
		news, err := s.pool.NewsByIDs(ctx, newsIDs)
		if err != nil {
			return nil, err
		}
		for i := range news {
			newsByID[news[i].ID] = news[i]
		}
	}

	views := make([]eventView, 0, len(events))
	for i := range events {
		ev := events[i]
		view := eventView{
			EventTicker:   ev.EventTicker,
			Title:         ev.Title,
			Category:      ev.Category,
			SubTitle:      ev.SubTitle,
			Status:        ev.Status,
			ExpiresAt:     ev.ExpiresAt,
			KeyWords:      ev.KeyWords,
			MarketTickers: ev.MarketTickers,
			Markets:       []marketView{},
			News:          []newsView{},
			CreatedAt:     ev.CreatedAt,
			UpdatedAt:     ev.UpdatedAt,
		}
		for _, m := range marketsByEvent[ev.EventTicker] {
			view.Markets = append(view.Markets, toMarketView(m))
		}
		for _, id := range ev.RelatedNews {
			if n, ok := newsByID[id]; ok {
				view.News = append(view.News, toNewsView(n))
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// pageParams parses limit/offset query parameters with bounds applied.
func pageParams(c echo.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, maxPageLimit)
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
