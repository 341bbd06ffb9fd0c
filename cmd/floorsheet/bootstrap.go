package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/merge"
	"github.com/bikky983/floorsheet/internal/merge/mergeobs"
	"github.com/bikky983/floorsheet/internal/runlog"
	"github.com/bikky983/floorsheet/internal/scraper"
	"github.com/bikky983/floorsheet/internal/store"
	"github.com/bikky983/floorsheet/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old run-log files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("FLOORSHEET_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := runlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old run logs", "error", err)
		}
	}
}

// initializeScraper builds the floorsheet scraper from config
func initializeScraper(cfg *store.Config) interfaces.FloorsheetScraper {
	return scraper.New(scraper.Params{
		BaseURL:   cfg.Scrape.BaseURL,
		MaxPages:  cfg.Scrape.MaxPages,
		DelayMin:  time.Duration(cfg.Scrape.DelayMinSeconds) * time.Second,
		DelayMax:  time.Duration(cfg.Scrape.DelayMaxSeconds) * time.Second,
		Timeout:   time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Scrape.UserAgent,
	})
}

// initializeMerger wires the aggregate store, the applied-dates set and the
// merge engine with observability
func initializeMerger(ctx context.Context, cfg *store.Config) (interfaces.AggregateMerger, error) {
	aggTable := store.NewAggregateTable(cfg.AggregatePath())

	var applied interfaces.AppliedSet
	if cfg.Save.SkipApplied {
		set, err := store.LoadAppliedDates(cfg.AppliedPath())
		if err != nil {
			// Refuse to run without the set rather than risk silently
			// double-counting an already-merged day.
			logger.ErrorWithErr(ctx, "Failed to load applied-dates set", err)
			return nil, err
		}
		applied = set
	}

	return mergeobs.Wrap(merge.New(aggTable, applied)), nil
}

// initializeRawMerger wires the raw-transaction store with observability
func initializeRawMerger(cfg *store.Config) interfaces.RawMerger {
	rawTable := store.NewRawTable(cfg.RawPath())
	return mergeobs.WrapRaw(merge.NewRaw(rawTable))
}
