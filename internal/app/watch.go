package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/tickerwire/internal/cli"
	"horse.fit/tickerwire/internal/config"
	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/logging"
	"horse.fit/tickerwire/internal/pipeline"
)

// runWatch keeps all three engines on independent schedules until
// interrupted. Each engine runs immediately on startup, then on its own
// ticker; overlapping runs of the same engine never happen because each
// loop is a single goroutine.
func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	syncEvery := fs.Duration("sync-every", 15*time.Minute, "Interval between market sync runs")
	discoverEvery := fs.Duration("discover-every", 30*time.Minute, "Interval between news discovery runs")
	thumbsEvery := fs.Duration("thumbs-every", time.Hour, "Interval between thumbnail backfill runs")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *syncEvery <= 0 || *discoverEvery <= 0 || *thumbsEvery <= 0 {
		fmt.Fprintln(os.Stderr, "intervals must be positive")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	svc := pipeline.NewService(pool, cfg, logger)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		engineLoop(ctx, logger, "sync", *syncEvery, func(ctx context.Context) error {
			_, err := svc.SyncMarkets(ctx)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		engineLoop(ctx, logger, "discover", *discoverEvery, func(ctx context.Context) error {
			_, err := svc.DiscoverNews(ctx)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		engineLoop(ctx, logger, "thumbs", *thumbsEvery, func(ctx context.Context) error {
			_, err := svc.BackfillThumbnails(ctx)
			return err
		})
	}()

	logger.Info().
		Dur("sync_every", *syncEvery).
		Dur("discover_every", *discoverEvery).
		Dur("thumbs_every", *thumbsEvery).
		Msg("watch started")

	wg.Wait()
	logger.Info().Msg("watch stopped")
	return 0
}

// engineLoop runs fn immediately, then on every tick. Engine failures
// are logged and the loop keeps going; only context cancellation stops
// it.
func engineLoop(ctx context.Context, logger zerolog.Logger, name string, every time.Duration, fn func(context.Context) error) {
	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Str("engine", name).Msg("engine run failed")
		}
	}

	run()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
