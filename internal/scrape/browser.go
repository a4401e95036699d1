package scrape

import (
	"context"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	defaultNavTimeout  = 20 * time.Second
	defaultSettleDelay = 1500 * time.Millisecond
)

// blockedResourceTypes are not needed to read a redirector page's
// navigation target, so the browser never downloads them.
var blockedResourceTypes = map[network.ResourceType]struct{}{
	network.ResourceTypeImage:      {},
	network.ResourceTypeStylesheet: {},
	network.ResourceTypeFont:       {},
	network.ResourceTypeMedia:      {},
}

// Resolver owns a shared headless-browser allocator and caps how many
// tabs run at once. One Resolver serves a whole backfill run and must
// be closed when the run ends, error paths included.
type Resolver struct {
	allocCtx       context.Context
	allocCancel    context.CancelFunc
	sem            *semaphore.Weighted
	redirectorHost string
	navTimeout     time.Duration
	settleDelay    time.Duration
	logger         zerolog.Logger
}

type ResolverOptions struct {
	PoolSize       int
	RedirectorHost string
	NavTimeout     time.Duration
	SettleDelay    time.Duration
}

func NewResolver(opts ResolverOptions, logger zerolog.Logger) *Resolver {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	navTimeout := opts.NavTimeout
	if navTimeout <= 0 {
		navTimeout = defaultNavTimeout
	}
	settleDelay := opts.SettleDelay
	if settleDelay <= 0 {
		settleDelay = defaultSettleDelay
	}
	redirectorHost := opts.RedirectorHost
	if redirectorHost == "" {
		redirectorHost = "news.google.com"
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Resolver{
		allocCtx:       allocCtx,
		allocCancel:    allocCancel,
		sem:            semaphore.NewWeighted(int64(poolSize)),
		redirectorHost: redirectorHost,
		navTimeout:     navTimeout,
		settleDelay:    settleDelay,
		logger:         logger,
	}
}

// Close tears the browser allocator down. Idle tabs drain as their
// contexts cancel.
func (r *Resolver) Close() {
	if r == nil || r.allocCancel == nil {
		return
	}
	r.allocCancel()
}

// Resolve loads a redirector link in a browser tab and returns the real
// article URL it leads to. It never fails past its boundary: any
// internal error yields the original link unchanged.
func (r *Resolver) Resolve(ctx context.Context, link string) string {
	if r == nil || r.sem == nil {
		return link
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return link
	}
	defer r.sem.Release(1)

	resolved, err := r.resolve(ctx, link)
	if err != nil {
		r.logger.Debug().Err(err).Str("link", link).Msg("redirector resolution failed; using original link")
		return link
	}
	if resolved == "" {
		return link
	}
	return resolved
}

func (r *Resolver) resolve(ctx context.Context, link string) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, r.navTimeout)
	defer timeoutCancel()

	// Tie the tab to the caller's cancellation even though it derives
	// from the shared allocator context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	installResourceBlocking(tabCtx)

	var location, pageHTML string
	err := chromedp.Run(tabCtx,
		fetch.Enable(),
		chromedp.Navigate(link),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settleDelay),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}

	base, parseErr := url.Parse(location)
	if parseErr == nil && base.Hostname() != "" && !onDomain(base.Hostname(), r.redirectorHost) {
		return location, nil
	}

	return PickResolvedURL(pageHTML, base, r.redirectorHost), nil
}

func installResourceBlocking(tabCtx context.Context) {
	chromedp.ListenTarget(tabCtx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			execCtx := cdp.WithExecutor(tabCtx, chromedp.FromContext(tabCtx).Target)
			if _, blocked := blockedResourceTypes[paused.ResourceType]; blocked {
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				return
			}
			_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
		}()
	})
}
