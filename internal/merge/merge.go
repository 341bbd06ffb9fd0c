// Package merge combines freshly aggregated batches with the persisted
// stores. One batch is merged per run; the store is read fully, the next
// state is computed in memory and written back wholesale.
package merge

import (
	"context"
	"fmt"

	"github.com/bikky983/floorsheet/internal/aggregate"
	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/types"
)

// Engine merges batch aggregates into the aggregate store.
type Engine struct {
	store   interfaces.AggregateStore
	applied interfaces.AppliedSet
}

var _ interfaces.AggregateMerger = (*Engine)(nil)

// New builds an engine. applied may be nil, in which case reruns of an
// already-merged date double-count; callers wanting idempotent reruns pass
// the persisted applied-dates set.
func New(store interfaces.AggregateStore, applied interfaces.AppliedSet) *Engine {
	return &Engine{store: store, applied: applied}
}

// Merge aggregates the batch, combines it with the previous store state and
// persists the result.
func (e *Engine) Merge(ctx context.Context, fs *types.Floorsheet) (types.MergeStats, error) {
	date := BatchDate(fs)
	stats := types.MergeStats{Date: date}

	batch, err := aggregate.Build(fs)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate batch: %w", err)
	}
	if len(batch) == 0 {
		return stats, nil
	}

	if e.applied != nil && e.applied.Contains(date) {
		logger.Warn(ctx, "Batch date already merged, skipping to avoid double counting", "date", date)
		stats.Skipped = true
		return stats, nil
	}

	prev, err := e.store.Load(ctx)
	if err != nil {
		// Data-loss fallback: a corrupt previous store must not abort the
		// run. The batch becomes the entire new store.
		logger.Warn(ctx, "Failed to read previous aggregate store, starting from empty state", "error", err)
		prev = types.AggregateSet{}
	}

	merged := Apply(prev, batch, date, &stats)

	if err := e.store.Replace(ctx, merged); err != nil {
		return stats, fmt.Errorf("failed to persist aggregate store: %w", err)
	}

	if e.applied != nil {
		if err := e.applied.Mark(date); err != nil {
			// The store is already updated; failing the run tells the
			// operator a rerun would double-count this date.
			return stats, fmt.Errorf("failed to record applied date %s: %w", date, err)
		}
	}

	return stats, nil
}

// Apply computes the next store state from the previous state and the
// batch-local aggregates. Keys in both get field-wise sum addition with all
// derived fields recomputed; keys only in the batch are inserted as-is; keys
// only in the previous state are carried forward untouched, stale
// last_updated included. Merging batch A then batch B equals merging their
// keywise sum.
func Apply(prev, batch types.AggregateSet, date string, stats *types.MergeStats) types.AggregateSet {
	merged := make(types.AggregateSet, len(prev)+len(batch))
	for k, a := range prev {
		merged[k] = a
	}

	for k, b := range batch {
		if existing, ok := merged[k]; ok {
			aggregate.AddSums(existing, b)
			aggregate.Recompute(existing)
			existing.LastUpdated = date
			stats.UpdatedRows++
			continue
		}
		merged[k] = b
		stats.NewRows++
	}

	stats.CarriedRows = len(prev) - stats.UpdatedRows
	stats.TotalRows = len(merged)
	return merged
}

// BatchDate returns the batch's trade date, falling back to the first
// record's date when the page-level date was not captured.
func BatchDate(fs *types.Floorsheet) string {
	if fs == nil {
		return ""
	}
	if fs.Date != "" {
		return fs.Date
	}
	if len(fs.Transactions) > 0 {
		return fs.Transactions[0].Date
	}
	return ""
}
