package mergeobs

import (
	"context"

	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/trace"
	"github.com/bikky983/floorsheet/internal/types"
)

type observableMerger struct {
	merger interfaces.AggregateMerger
}

var _ interfaces.AggregateMerger = (*observableMerger)(nil)

// Wrap adds tracing and structured logging around an aggregate merger.
func Wrap(merger interfaces.AggregateMerger) interfaces.AggregateMerger {
	return &observableMerger{merger: merger}
}

func (om *observableMerger) Merge(ctx context.Context, fs *types.Floorsheet) (types.MergeStats, error) {
	ctx, span := trace.StartSpan(ctx, "merge.Merge")
	defer span.End()

	logger.Info(ctx, "Starting aggregate merge",
		"date", fs.Date,
		"records", len(fs.Transactions),
	)

	stats, err := om.merger.Merge(ctx, fs)
	if err != nil {
		logger.ErrorWithErr(ctx, "Aggregate merge failed", err, "date", fs.Date)
		return stats, err
	}

	if stats.Skipped {
		logger.Warn(ctx, "Aggregate merge skipped, date already applied", "date", stats.Date)
		return stats, nil
	}

	logger.Merge(ctx, stats.Date, stats.NewRows, stats.UpdatedRows, stats.CarriedRows,
		"total_rows", stats.TotalRows,
	)
	return stats, nil
}

type observableRawMerger struct {
	merger interfaces.RawMerger
}

var _ interfaces.RawMerger = (*observableRawMerger)(nil)

// WrapRaw adds tracing and structured logging around a raw merger.
func WrapRaw(merger interfaces.RawMerger) interfaces.RawMerger {
	return &observableRawMerger{merger: merger}
}

func (om *observableRawMerger) AppendNew(ctx context.Context, fs *types.Floorsheet) (added, dropped int, err error) {
	ctx, span := trace.StartSpan(ctx, "merge.AppendNew")
	defer span.End()

	added, dropped, err = om.merger.AppendNew(ctx, fs)
	if err != nil {
		logger.ErrorWithErr(ctx, "Raw append failed", err, "date", fs.Date)
		return added, dropped, err
	}

	logger.Info(ctx, "Raw transactions appended",
		"date", fs.Date,
		"added", added,
		"dropped_duplicates", dropped,
	)
	return added, dropped, nil
}
