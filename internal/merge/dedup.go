package merge

import (
	"context"
	"fmt"

	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/types"
)

// RawEngine appends a batch's unseen transactions to the raw store,
// first-write-wins per (date, transaction_no).
type RawEngine struct {
	store interfaces.RawStore
}

var _ interfaces.RawMerger = (*RawEngine)(nil)

func NewRaw(store interfaces.RawStore) *RawEngine {
	return &RawEngine{store: store}
}

// AppendNew merges the batch into the raw store and reports how many rows
// were appended and how many were dropped as duplicates.
func (e *RawEngine) AppendNew(ctx context.Context, fs *types.Floorsheet) (added, dropped int, err error) {
	if fs == nil || len(fs.Transactions) == 0 {
		return 0, 0, nil
	}

	prev, err := e.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "Failed to read previous raw store, saving new data only", "error", err)
		prev = nil
	}

	fresh := DedupNew(prev, fs.Transactions)
	added = len(fresh)
	dropped = len(fs.Transactions) - added
	if added == 0 {
		return added, dropped, nil
	}

	merged := make([]types.Transaction, 0, len(prev)+added)
	merged = append(merged, prev...)
	merged = append(merged, fresh...)

	if err := e.store.Replace(ctx, merged); err != nil {
		return 0, 0, fmt.Errorf("failed to persist raw store: %w", err)
	}
	return added, dropped, nil
}

// DedupNew returns the batch rows whose (date, transaction_no) key does not
// already appear in prev. Membership is a key-set lookup, not a nested scan.
// Duplicate keys within the batch itself also collapse to the first row.
func DedupNew(prev, batch []types.Transaction) []types.Transaction {
	seen := make(map[string]struct{}, len(prev))
	for _, t := range prev {
		seen[t.Key()] = struct{}{}
	}

	fresh := make([]types.Transaction, 0, len(batch))
	for _, t := range batch {
		k := t.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, t)
	}
	return fresh
}
