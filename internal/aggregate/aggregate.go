// Package aggregate reduces a scraped floorsheet batch into broker-stock
// aggregates. The fold is a pure function of the batch: it never looks at
// persisted state, and its output is identical for any ordering of the
// input records.
package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/types"
)

// Build folds a batch into batch-local aggregates. Every transaction
// contributes a buy leg keyed by the buyer broker and a sell leg keyed by
// the seller broker; a trade whose buyer and seller resolve to the same
// broker feeds both sums of one row with no netting. An empty batch yields
// an empty set.
func Build(fs *types.Floorsheet) (types.AggregateSet, error) {
	aggs := types.AggregateSet{}
	if fs == nil {
		return aggs, nil
	}

	batchDate := fs.Date
	for _, t := range fs.Transactions {
		if batchDate == "" {
			batchDate = t.Date
		}
		if err := validate(t); err != nil {
			return nil, err
		}

		date := t.Date
		if date == "" {
			date = batchDate
		}

		buy := row(aggs, types.AggregateKey{BrokerID: t.BuyerID, BrokerName: t.BuyerName, Symbol: t.Symbol})
		buy.BuyQuantity += t.Quantity
		buy.BuyAmount = buy.BuyAmount.Add(t.Amount)
		buy.LastUpdated = date

		sell := row(aggs, types.AggregateKey{BrokerID: t.SellerID, BrokerName: t.SellerName, Symbol: t.Symbol})
		sell.SellQuantity += t.Quantity
		sell.SellAmount = sell.SellAmount.Add(t.Amount)
		sell.LastUpdated = date
	}

	for _, a := range aggs {
		Recompute(a)
	}
	return aggs, nil
}

// row returns the aggregate for key, creating a zeroed one on first touch.
func row(aggs types.AggregateSet, key types.AggregateKey) *types.BrokerStockAggregate {
	a := aggs[key]
	if a == nil {
		a = &types.BrokerStockAggregate{
			BrokerID:   key.BrokerID,
			BrokerName: key.BrokerName,
			Symbol:     key.Symbol,
		}
		aggs[key] = a
	}
	return a
}

// validate rejects records that would corrupt the sums. Records normally
// arrive well-formed from the parser; a bad one fails the whole run rather
// than being silently zeroed.
func validate(t types.Transaction) error {
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction %s: quantity must be positive, got %d", t.Key(), t.Quantity)
	}
	if !t.Rate.IsPositive() {
		return fmt.Errorf("transaction %s: rate must be positive, got %s", t.Key(), t.Rate)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %s: amount must not be negative, got %s", t.Key(), t.Amount)
	}
	return nil
}

// AddSums adds src's four sum fields into dst. Derived fields are left
// stale; callers must Recompute afterwards.
func AddSums(dst, src *types.BrokerStockAggregate) {
	dst.BuyQuantity += src.BuyQuantity
	dst.BuyAmount = dst.BuyAmount.Add(src.BuyAmount)
	dst.SellQuantity += src.SellQuantity
	dst.SellAmount = dst.SellAmount.Add(src.SellAmount)
}

// Recompute rebuilds every derived field from the current sums. Deriving
// from the sums each time avoids incremental drift.
func Recompute(a *types.BrokerStockAggregate) {
	a.AvgBuyPrice = SafeDiv(a.BuyAmount, a.BuyQuantity)
	a.AvgSellPrice = SafeDiv(a.SellAmount, a.SellQuantity)
	a.NetQuantity = a.BuyQuantity - a.SellQuantity
	a.AvgHoldingPrice = SafeDiv(a.BuyAmount.Sub(a.SellAmount), a.NetQuantity)
}

// SafeDiv divides num by den, defaulting to zero when den is zero or
// negative. Flat and net-short rows therefore report a zero holding price.
func SafeDiv(num decimal.Decimal, den int64) decimal.Decimal {
	if den <= 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(den))
}
