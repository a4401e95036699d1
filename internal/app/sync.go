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

func runSync(args []string) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")

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
	result, err := svc.SyncMarkets(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("market sync failed")
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		return 1
	}

	fmt.Printf("pages=%d created=%d updated=%d skipped=%d markets=%d events_deleted=%d markets_deleted=%d aborted=%t\n",
		result.PagesFetched, result.EventsCreated, result.EventsUpdated, result.EventsSkipped,
		result.MarketsUpserted, result.EventsDeleted, result.MarketsDeleted, result.Aborted)
	return 0
}
