package merge

import (
	"context"
	"errors"
	"testing"

	"github.com/bikky983/floorsheet/internal/types"
)

type fakeRawStore struct {
	txns       []types.Transaction
	loadErr    error
	replaceErr error
	replaced   int
}

func (f *fakeRawStore) Load(context.Context) ([]types.Transaction, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]types.Transaction{}, f.txns...), nil
}

func (f *fakeRawStore) Replace(_ context.Context, txns []types.Transaction) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.txns = txns
	f.replaced++
	return nil
}

func TestDedupNew(t *testing.T) {
	prev := []types.Transaction{
		txn("2026-08-27", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
		txn("2026-08-27", "2", "XYZ", "B3", "Broker Three", "B1", "Broker One", 5, 50, 250),
	}
	batch := []types.Transaction{
		txn("2026-08-27", "2", "XYZ", "B3", "Broker Three", "B1", "Broker One", 5, 50, 250),
		txn("2026-08-28", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 20, 110, 2200),
		// same transaction_no as a prev row but a different date is a new key
		txn("2026-08-28", "2", "XYZ", "B3", "Broker Three", "B1", "Broker One", 5, 55, 275),
	}

	fresh := DedupNew(prev, batch)
	if len(fresh) != 2 {
		t.Fatalf("Expected 2 new rows, got %d", len(fresh))
	}
	if fresh[0].Key() != "2026-08-28-1" || fresh[1].Key() != "2026-08-28-2" {
		t.Errorf("Unexpected new rows: %v %v", fresh[0].Key(), fresh[1].Key())
	}
}

func TestDedupNewCollapsesInBatchDuplicates(t *testing.T) {
	batch := []types.Transaction{
		txn("2026-08-28", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
		txn("2026-08-28", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
	}
	fresh := DedupNew(nil, batch)
	if len(fresh) != 1 {
		t.Errorf("Expected in-batch duplicates collapsed, got %d rows", len(fresh))
	}
}

func TestAppendNewIdempotent(t *testing.T) {
	st := &fakeRawStore{}
	eng := NewRaw(st)
	ctx := context.Background()

	fs := fsOf("2026-08-28",
		txn("2026-08-28", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
		txn("2026-08-28", "2", "XYZ", "B3", "Broker Three", "B1", "Broker One", 5, 50, 250),
	)

	added, dropped, err := eng.AppendNew(ctx, fs)
	if err != nil {
		t.Fatal(err)
	}
	if added != 2 || dropped != 0 {
		t.Errorf("Expected 2 added 0 dropped, got %d/%d", added, dropped)
	}

	// merging the identical batch again drops every row
	added, dropped, err = eng.AppendNew(ctx, fs)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 || dropped != 2 {
		t.Errorf("Expected 0 added 2 dropped on replay, got %d/%d", added, dropped)
	}
	if len(st.txns) != 2 {
		t.Errorf("Expected store unchanged after replay, got %d rows", len(st.txns))
	}
}

func TestAppendNewPreservesExistingRows(t *testing.T) {
	st := &fakeRawStore{txns: []types.Transaction{
		txn("2026-08-27", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
	}}
	eng := NewRaw(st)

	added, _, err := eng.AppendNew(context.Background(), fsOf("2026-08-28",
		txn("2026-08-28", "1", "XYZ", "B3", "Broker Three", "B1", "Broker One", 5, 50, 250),
	))
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Fatalf("Expected 1 added, got %d", added)
	}
	if len(st.txns) != 2 {
		t.Fatalf("Expected 2 rows total, got %d", len(st.txns))
	}
	if st.txns[0].Key() != "2026-08-27-1" {
		t.Error("Expected existing rows to stay first")
	}
}

func TestAppendNewReadFailureSavesBatchOnly(t *testing.T) {
	st := &fakeRawStore{loadErr: errors.New("corrupt table")}
	eng := NewRaw(st)

	added, _, err := eng.AppendNew(context.Background(), fsOf("2026-08-28",
		txn("2026-08-28", "1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
	))
	if err != nil {
		t.Fatalf("Read failure must not abort, got %v", err)
	}
	if added != 1 {
		t.Errorf("Expected batch saved as-is, added=%d", added)
	}
}

func TestAppendNewEmptyBatch(t *testing.T) {
	st := &fakeRawStore{}
	eng := NewRaw(st)

	added, dropped, err := eng.AppendNew(context.Background(), fsOf("2026-08-28"))
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 || dropped != 0 || st.replaced != 0 {
		t.Errorf("Expected no-op for empty batch, got added=%d dropped=%d writes=%d", added, dropped, st.replaced)
	}
}
