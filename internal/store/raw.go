package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/types"
)

// rawRow is the Parquet schema of the raw-transaction store, one row per
// floorsheet transaction ever seen.
type rawRow struct {
	Date          string  `parquet:"date"`
	TransactionNo string  `parquet:"transaction_no"`
	Symbol        string  `parquet:"symbol"`
	SymbolFull    string  `parquet:"symbol_full"`
	BuyerID       string  `parquet:"buyer_id"`
	BuyerName     string  `parquet:"buyer_name"`
	SellerID      string  `parquet:"seller_id"`
	SellerName    string  `parquet:"seller_name"`
	Quantity      int64   `parquet:"quantity"`
	Rate          float64 `parquet:"rate"`
	Amount        float64 `parquet:"amount"`
}

// RawTable is the Parquet-backed raw-transaction store.
type RawTable struct {
	path string
}

func NewRawTable(path string) *RawTable {
	return &RawTable{path: path}
}

// Load reads the whole raw table. A missing file yields an empty slice.
func (s *RawTable) Load(_ context.Context) ([]types.Transaction, error) {
	rows, err := readTable[rawRow](s.path)
	if err != nil {
		return nil, err
	}
	txns := make([]types.Transaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, types.Transaction{
			Date:          r.Date,
			TransactionNo: r.TransactionNo,
			Symbol:        r.Symbol,
			SymbolFull:    r.SymbolFull,
			BuyerID:       r.BuyerID,
			BuyerName:     r.BuyerName,
			SellerID:      r.SellerID,
			SellerName:    r.SellerName,
			Quantity:      r.Quantity,
			Rate:          decimal.NewFromFloat(r.Rate),
			Amount:        decimal.NewFromFloat(r.Amount),
		})
	}
	return txns, nil
}

// Replace persists the full transaction list wholesale, preserving order so
// appended batches stay grouped by scrape run.
func (s *RawTable) Replace(_ context.Context, txns []types.Transaction) error {
	rows := make([]rawRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, rawRow{
			Date:          t.Date,
			TransactionNo: t.TransactionNo,
			Symbol:        t.Symbol,
			SymbolFull:    t.SymbolFull,
			BuyerID:       t.BuyerID,
			BuyerName:     t.BuyerName,
			SellerID:      t.SellerID,
			SellerName:    t.SellerName,
			Quantity:      t.Quantity,
			Rate:          t.Rate.InexactFloat64(),
			Amount:        t.Amount.InexactFloat64(),
		})
	}
	return writeTable(s.path, rows)
}
