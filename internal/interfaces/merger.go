package interfaces

import (
	"context"

	"github.com/bikky983/floorsheet/internal/types"
)

// AggregateMerger folds one scraped batch into the persisted aggregate store.
type AggregateMerger interface {
	// Merge aggregates the batch, combines it with the previous store state
	// and persists the result. A batch whose date was already applied is
	// skipped and reported via MergeStats.Skipped.
	Merge(ctx context.Context, fs *types.Floorsheet) (types.MergeStats, error)
}

// RawMerger appends the batch's previously unseen transactions to the raw
// store, first-write-wins per (date, transaction_no).
type RawMerger interface {
	AppendNew(ctx context.Context, fs *types.Floorsheet) (added, dropped int, err error)
}
