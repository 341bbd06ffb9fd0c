package interfaces

import (
	"context"

	"github.com/bikky983/floorsheet/internal/types"
)

// AggregateStore is the persisted broker-stock aggregate table. Load reads
// the whole table; Replace swaps it wholesale, leaving the previous version
// intact if the write fails.
type AggregateStore interface {
	Load(ctx context.Context) (types.AggregateSet, error)
	Replace(ctx context.Context, aggs types.AggregateSet) error
}

// RawStore is the persisted table of every raw transaction ever seen.
type RawStore interface {
	Load(ctx context.Context) ([]types.Transaction, error)
	Replace(ctx context.Context, txns []types.Transaction) error
}

// AppliedSet tracks which batch dates have already been merged into the
// aggregate store.
type AppliedSet interface {
	Contains(date string) bool
	Mark(date string) error
}
