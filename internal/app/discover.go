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

func runDiscover(args []string) int {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Minute, "Command timeout")

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
	result, err := svc.DiscoverNews(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("news discovery failed")
		fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
		return 1
	}

	fmt.Printf("events=%d events_failed=%d linked=%d new=%d already_linked=%d stale=%d other_language=%d failed=%d\n",
		result.EventsProcessed, result.EventsFailed, result.Linked, result.NewArticles,
		result.AlreadyLinked, result.Stale, result.OtherLanguage, result.Failed)
	return 0
}
