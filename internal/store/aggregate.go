package store

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/types"
)

// aggregateRow is the Parquet schema of the aggregate store. Decimal fields
// live as float64 columns on disk, matching the original file layout.
type aggregateRow struct {
	BrokerID        string  `parquet:"broker_id"`
	BrokerName      string  `parquet:"broker_name"`
	Symbol          string  `parquet:"symbol"`
	BuyQuantity     int64   `parquet:"buy_quantity"`
	BuyAmount       float64 `parquet:"buy_amount"`
	SellQuantity    int64   `parquet:"sell_quantity"`
	SellAmount      float64 `parquet:"sell_amount"`
	AvgBuyPrice     float64 `parquet:"avg_buy_price"`
	AvgSellPrice    float64 `parquet:"avg_sell_price"`
	NetQuantity     int64   `parquet:"net_quantity"`
	AvgHoldingPrice float64 `parquet:"avg_holding_price"`
	LastUpdated     string  `parquet:"last_updated"`
}

// AggregateTable is the Parquet-backed broker-stock aggregate store.
type AggregateTable struct {
	path string
}

func NewAggregateTable(path string) *AggregateTable {
	return &AggregateTable{path: path}
}

// Load reads the whole aggregate table. A missing file yields an empty set.
func (s *AggregateTable) Load(_ context.Context) (types.AggregateSet, error) {
	rows, err := readTable[aggregateRow](s.path)
	if err != nil {
		return nil, err
	}
	aggs := make(types.AggregateSet, len(rows))
	for _, r := range rows {
		a := &types.BrokerStockAggregate{
			BrokerID:        r.BrokerID,
			BrokerName:      r.BrokerName,
			Symbol:          r.Symbol,
			BuyQuantity:     r.BuyQuantity,
			BuyAmount:       decimal.NewFromFloat(r.BuyAmount),
			SellQuantity:    r.SellQuantity,
			SellAmount:      decimal.NewFromFloat(r.SellAmount),
			AvgBuyPrice:     decimal.NewFromFloat(r.AvgBuyPrice),
			AvgSellPrice:    decimal.NewFromFloat(r.AvgSellPrice),
			NetQuantity:     r.NetQuantity,
			AvgHoldingPrice: decimal.NewFromFloat(r.AvgHoldingPrice),
			LastUpdated:     r.LastUpdated,
		}
		aggs[a.Key()] = a
	}
	return aggs, nil
}

// Replace persists the full set wholesale, sorted by key for stable files.
func (s *AggregateTable) Replace(_ context.Context, aggs types.AggregateSet) error {
	rows := make([]aggregateRow, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, aggregateRow{
			BrokerID:        a.BrokerID,
			BrokerName:      a.BrokerName,
			Symbol:          a.Symbol,
			BuyQuantity:     a.BuyQuantity,
			BuyAmount:       a.BuyAmount.InexactFloat64(),
			SellQuantity:    a.SellQuantity,
			SellAmount:      a.SellAmount.InexactFloat64(),
			AvgBuyPrice:     a.AvgBuyPrice.InexactFloat64(),
			AvgSellPrice:    a.AvgSellPrice.InexactFloat64(),
			NetQuantity:     a.NetQuantity,
			AvgHoldingPrice: a.AvgHoldingPrice.InexactFloat64(),
			LastUpdated:     a.LastUpdated,
		})
	}
	sortAggregateRows(rows)
	return writeTable(s.path, rows)
}

func sortAggregateRows(rows []aggregateRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.BrokerID != b.BrokerID {
			return a.BrokerID < b.BrokerID
		}
		if a.BrokerName != b.BrokerName {
			return a.BrokerName < b.BrokerName
		}
		return a.Symbol < b.Symbol
	})
}
