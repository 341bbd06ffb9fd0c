package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/report"
	"github.com/bikky983/floorsheet/internal/runlog"
	"github.com/bikky983/floorsheet/internal/store"
	"github.com/bikky983/floorsheet/internal/trace"
	"github.com/bikky983/floorsheet/internal/types"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	defer func() {
		_ = logger.Shutdown(ctx)
		_ = trace.Shutdown(ctx)
	}()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	start := time.Now()
	summary := types.RunSummary{}

	scr := initializeScraper(cfg)
	fs, err := scr.Scrape(ctx)
	if err != nil {
		failRun(ctx, summary, err, "Floorsheet scrape failed")
	}

	summary.Date = fs.Date
	summary.Pages = fs.TotalPages
	summary.Records = len(fs.Transactions)

	// A run that scraped nothing is a failed run. The stores stay untouched.
	if summary.Records == 0 {
		failRun(ctx, summary, fmt.Errorf("scraped zero records"), "No floorsheet data scraped")
	}

	logger.Info(ctx, "Floorsheet scrape completed",
		"date", fs.Date,
		"pages", fs.TotalPages,
		"records", summary.Records,
	)

	if cfg.Save.Aggregate {
		merger, err := initializeMerger(ctx, cfg)
		if err != nil {
			failRun(ctx, summary, err, "Merger initialization failed")
		}
		stats, err := merger.Merge(ctx, fs)
		if err != nil {
			failRun(ctx, summary, err, "Aggregate merge failed")
		}
		summary.Aggregate = stats

		if cfg.Save.DailyReport && !stats.Skipped {
			writeDailyReport(ctx, cfg, stats.Date)
		}
	}

	if cfg.Save.Raw {
		raw := initializeRawMerger(cfg)
		added, dropped, err := raw.AppendNew(ctx, fs)
		if err != nil {
			failRun(ctx, summary, err, "Raw transaction save failed")
		}
		summary.RawAdded = added
		summary.RawDropped = dropped
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	if err := runlog.Append(runlog.Entry{Summary: summary}); err != nil {
		logger.Warn(ctx, "Failed to append run log", "error", err)
	}

	b, _ := json.Marshal(summary)
	fmt.Println(string(b))
}

// writeDailyReport renders the day's CSV snapshot; a failed report is logged
// but never fails the run.
func writeDailyReport(ctx context.Context, cfg *store.Config, date string) {
	w := report.NewWriter(store.NewAggregateTable(cfg.AggregatePath()), cfg.Output.ReportDir)
	p, err := w.WriteDaily(ctx, date)
	if err != nil {
		logger.Warn(ctx, "Failed to write daily report", "error", err, "date", date)
		return
	}
	if p != "" {
		logger.Info(ctx, "Daily report written", "path", p)
	}
}

// failRun logs the error, records the failed run and exits non-zero.
func failRun(ctx context.Context, summary types.RunSummary, err error, msg string) {
	logger.ErrorWithErr(ctx, msg, err)
	_ = runlog.Append(runlog.Entry{Summary: summary, Error: err.Error()})
	_ = logger.Shutdown(ctx)
	_ = trace.Shutdown(ctx)
	os.Exit(1)
}
