package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/tickerwire/internal/cli"
	"horse.fit/tickerwire/internal/config"
	"horse.fit/tickerwire/internal/db"
	"horse.fit/tickerwire/internal/logging"
	"horse.fit/tickerwire/internal/pipeline"
)

// runProcess runs the three engines once, in dependency order: sync
// feeds keywords to discovery, discovery feeds articles to the
// thumbnail backfill.
func runProcess(args []string) int {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", time.Hour, "Command timeout")
	skipSync := fs.Bool("skip-sync", false, "Skip the market sync stage")
	skipDiscover := fs.Bool("skip-discover", false, "Skip the news discovery stage")
	skipThumbs := fs.Bool("skip-thumbs", false, "Skip the thumbnail backfill stage")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	svc := pipeline.NewService(pool, cfg, logger)
	exitCode := 0

	if !*skipSync {
		result, err := svc.SyncMarkets(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("market sync failed")
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			exitCode = 1
		} else {
			fmt.Printf("sync: pages=%d created=%d updated=%d markets=%d aborted=%t\n",
				result.PagesFetched, result.EventsCreated, result.EventsUpdated,
				result.MarketsUpserted, result.Aborted)
		}
	}

	if !*skipDiscover {
		result, err := svc.DiscoverNews(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("news discovery failed")
			fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
			exitCode = 1
		} else {
			fmt.Printf("discover: events=%d linked=%d new=%d\n",
				result.EventsProcessed, result.Linked, result.NewArticles)
		}
	}

	if !*skipThumbs {
		result, err := svc.BackfillThumbnails(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("thumbnail backfill failed")
			fmt.Fprintf(os.Stderr, "Thumbnail backfill failed: %v\n", err)
			exitCode = 1
		} else {
			fmt.Printf("thumbs: candidates=%d updated=%d failed=%d\n",
				result.Candidates, result.Updated, result.Failed)
		}
	}

	return exitCode
}
