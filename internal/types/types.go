package types

import "github.com/shopspring/decimal"

// Transaction is one parsed floorsheet trade. Records are immutable once
// parsed; amount comes from the source and is authoritative (it may differ
// from quantity*rate by source-side rounding).
type Transaction struct {
	Date          string          `json:"date"`
	TransactionNo string          `json:"transaction_no"`
	Symbol        string          `json:"symbol"`
	SymbolFull    string          `json:"symbol_full"`
	BuyerID       string          `json:"buyer_id"`
	BuyerName     string          `json:"buyer_name"`
	SellerID      string          `json:"seller_id"`
	SellerName    string          `json:"seller_name"`
	Quantity      int64           `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// Key returns the compound raw-dedup key, unique across dates.
func (t Transaction) Key() string {
	return t.Date + "-" + t.TransactionNo
}

// Floorsheet is one scraping run's batch, generally one trading day.
type Floorsheet struct {
	Date         string        `json:"date"`
	TotalPages   int           `json:"total_pages"`
	Transactions []Transaction `json:"transactions"`
}

// AggregateKey identifies one persisted broker-stock row. Broker id and name
// are jointly identifying: the source serves name variants for the same id
// and each combination is a distinct row.
type AggregateKey struct {
	BrokerID   string
	BrokerName string
	Symbol     string
}

// BrokerStockAggregate is the persisted summary for one (broker, symbol)
// pair. The four sums only ever grow; the derived fields are recomputed from
// the sums on every update and never adjusted independently.
type BrokerStockAggregate struct {
	BrokerID   string
	BrokerName string
	Symbol     string

	BuyQuantity  int64
	BuyAmount    decimal.Decimal
	SellQuantity int64
	SellAmount   decimal.Decimal

	AvgBuyPrice     decimal.Decimal
	AvgSellPrice    decimal.Decimal
	NetQuantity     int64
	AvgHoldingPrice decimal.Decimal

	LastUpdated string
}

// Key returns the row's identity.
func (a *BrokerStockAggregate) Key() AggregateKey {
	return AggregateKey{BrokerID: a.BrokerID, BrokerName: a.BrokerName, Symbol: a.Symbol}
}

// AggregateSet is the in-memory form of the aggregate store.
type AggregateSet map[AggregateKey]*BrokerStockAggregate

// MergeStats summarizes one merge run for reporting.
type MergeStats struct {
	Date        string `json:"date"`
	NewRows     int    `json:"new_rows"`
	UpdatedRows int    `json:"updated_rows"`
	CarriedRows int    `json:"carried_rows"`
	TotalRows   int    `json:"total_rows"`
	Skipped     bool   `json:"skipped,omitempty"`
}

// RunSummary is the end-of-run record printed by the CLI and appended to the
// run log.
type RunSummary struct {
	Date       string     `json:"date"`
	Pages      int        `json:"pages"`
	Records    int        `json:"records"`
	Aggregate  MergeStats `json:"aggregate,omitempty"`
	RawAdded   int        `json:"raw_added"`
	RawDropped int        `json:"raw_dropped"`
	DurationMs int64      `json:"duration_ms"`
}
