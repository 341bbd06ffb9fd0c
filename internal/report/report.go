// Package report writes a per-day CSV snapshot of the broker-stock rows a
// batch touched, for eyeballing a run without opening the Parquet store.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/types"
)

// Writer renders daily CSV summaries from the aggregate store.
type Writer struct {
	store interfaces.AggregateStore
	dir   string
}

func NewWriter(store interfaces.AggregateStore, dir string) *Writer {
	return &Writer{store: store, dir: dir}
}

// WriteDaily writes <dir>/<date>.csv containing every aggregate row whose
// last update was the given date, plus a TOTAL turnover footer. Returns the
// written path, or "" when no rows match.
func (w *Writer) WriteDaily(ctx context.Context, date string) (string, error) {
	aggs, err := w.store.Load(ctx)
	if err != nil {
		return "", err
	}

	rows := make([]*types.BrokerStockAggregate, 0, len(aggs))
	for _, a := range aggs {
		if a.LastUpdated == date {
			rows = append(rows, a)
		}
	}
	if len(rows) == 0 {
		return "", nil
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.BrokerID != b.BrokerID {
			return a.BrokerID < b.BrokerID
		}
		return a.BrokerName < b.BrokerName
	})

	outPath := filepath.Join(w.dir, date+".csv")
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	cw := csv.NewWriter(out)
	defer cw.Flush()

	headers := []string{"symbol", "broker_id", "broker_name", "buy_qty", "avg_buy_price", "sell_qty", "avg_sell_price", "net_qty", "avg_holding_price", "buy_amount", "sell_amount"}
	if err := cw.Write(headers); err != nil {
		return "", err
	}

	totalBuy, totalSell := decimal.Zero, decimal.Zero
	for _, r := range rows {
		rec := []string{
			r.Symbol,
			r.BrokerID,
			r.BrokerName,
			strconv.FormatInt(r.BuyQuantity, 10),
			r.AvgBuyPrice.StringFixed(4),
			strconv.FormatInt(r.SellQuantity, 10),
			r.AvgSellPrice.StringFixed(4),
			strconv.FormatInt(r.NetQuantity, 10),
			r.AvgHoldingPrice.StringFixed(4),
			r.BuyAmount.StringFixed(2),
			r.SellAmount.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return "", err
		}
		totalBuy = totalBuy.Add(r.BuyAmount)
		totalSell = totalSell.Add(r.SellAmount)
	}

	footer := []string{"TOTAL", "", "", "", "", "", "", "", "", totalBuy.StringFixed(2), totalSell.StringFixed(2)}
	if err := cw.Write(footer); err != nil {
		return "", err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", outPath, err)
	}
	return outPath, nil
}
