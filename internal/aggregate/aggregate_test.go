package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/types"
)

func txn(no, symbol, buyerID, buyerName, sellerID, sellerName string, qty int64, rate, amount float64) types.Transaction {
	return types.Transaction{
		Date:          "2026-08-28",
		TransactionNo: no,
		Symbol:        symbol,
		BuyerID:       buyerID,
		BuyerName:     buyerName,
		SellerID:      sellerID,
		SellerName:    sellerName,
		Quantity:      qty,
		Rate:          decimal.NewFromFloat(rate),
		Amount:        decimal.NewFromFloat(amount),
	}
}

func batch(txns ...types.Transaction) *types.Floorsheet {
	return &types.Floorsheet{Date: "2026-08-28", Transactions: txns}
}

func TestBuildEmptyBatch(t *testing.T) {
	aggs, err := Build(batch())
	if err != nil {
		t.Fatalf("Expected no error for empty batch, got %v", err)
	}
	if len(aggs) != 0 {
		t.Errorf("Expected empty result for empty batch, got %d rows", len(aggs))
	}

	aggs, err = Build(nil)
	if err != nil {
		t.Fatalf("Expected no error for nil batch, got %v", err)
	}
	if len(aggs) != 0 {
		t.Errorf("Expected empty result for nil batch, got %d rows", len(aggs))
	}
}

func TestBuildSingleTransaction(t *testing.T) {
	aggs, err := Build(batch(
		txn("2026082800001", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, 1000),
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(aggs))
	}

	buyer := aggs[types.AggregateKey{BrokerID: "B1", BrokerName: "Broker One", Symbol: "ABC"}]
	if buyer == nil {
		t.Fatal("Expected buyer row to exist")
	}
	if buyer.BuyQuantity != 10 || buyer.SellQuantity != 0 {
		t.Errorf("Expected buy_qty=10 sell_qty=0, got %d/%d", buyer.BuyQuantity, buyer.SellQuantity)
	}
	if !buyer.BuyAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected buy_amount=1000, got %s", buyer.BuyAmount)
	}
	if !buyer.AvgBuyPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected avg_buy_price=100, got %s", buyer.AvgBuyPrice)
	}
	if buyer.NetQuantity != 10 {
		t.Errorf("Expected net_quantity=10, got %d", buyer.NetQuantity)
	}
	if buyer.LastUpdated != "2026-08-28" {
		t.Errorf("Expected last_updated=2026-08-28, got %s", buyer.LastUpdated)
	}

	seller := aggs[types.AggregateKey{BrokerID: "B2", BrokerName: "Broker Two", Symbol: "ABC"}]
	if seller == nil {
		t.Fatal("Expected seller row to exist")
	}
	if seller.SellQuantity != 10 || seller.BuyQuantity != 0 {
		t.Errorf("Expected sell_qty=10 buy_qty=0, got %d/%d", seller.SellQuantity, seller.BuyQuantity)
	}
	if !seller.AvgSellPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected avg_sell_price=100, got %s", seller.AvgSellPrice)
	}
	if seller.NetQuantity != -10 {
		t.Errorf("Expected net_quantity=-10, got %d", seller.NetQuantity)
	}
	if !seller.AvgHoldingPrice.IsZero() {
		t.Errorf("Expected avg_holding_price=0 for net short, got %s", seller.AvgHoldingPrice)
	}
}

func TestBuildOrderIndependence(t *testing.T) {
	txns := []types.Transaction{
		txn("1", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 250, 2500),
		txn("2", "ABC", "B1", "Broker One", "B3", "Broker Three", 90, 250, 22500),
		txn("3", "ABC", "B2", "Broker Two", "B1", "Broker One", 40, 275, 11000),
		txn("4", "XYZ", "B1", "Broker One", "B2", "Broker Two", 5, 90, 450),
	}

	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	var first types.AggregateSet
	for _, p := range perms {
		shuffled := make([]types.Transaction, len(txns))
		for i, idx := range p {
			shuffled[i] = txns[idx]
		}
		aggs, err := Build(batch(shuffled...))
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = aggs
			continue
		}
		if len(aggs) != len(first) {
			t.Fatalf("Permutation %v changed row count: %d vs %d", p, len(aggs), len(first))
		}
		for k, want := range first {
			got := aggs[k]
			if got == nil {
				t.Fatalf("Permutation %v lost key %+v", p, k)
			}
			if got.BuyQuantity != want.BuyQuantity || got.SellQuantity != want.SellQuantity {
				t.Errorf("Permutation %v changed sums for %+v", p, k)
			}
			if !got.BuyAmount.Equal(want.BuyAmount) || !got.SellAmount.Equal(want.SellAmount) {
				t.Errorf("Permutation %v changed amounts for %+v", p, k)
			}
			if !got.AvgBuyPrice.Equal(want.AvgBuyPrice) || !got.AvgHoldingPrice.Equal(want.AvgHoldingPrice) {
				t.Errorf("Permutation %v changed derived fields for %+v", p, k)
			}
		}
	}
}

func TestDerivedFieldCorrectness(t *testing.T) {
	// buy 100 @ 25000 total, sell 40 @ 11000 total
	a := &types.BrokerStockAggregate{
		BrokerID:     "B1",
		BrokerName:   "Broker One",
		Symbol:       "ABC",
		BuyQuantity:  100,
		BuyAmount:    decimal.NewFromInt(25000),
		SellQuantity: 40,
		SellAmount:   decimal.NewFromInt(11000),
	}
	Recompute(a)

	if !a.AvgBuyPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected avg_buy_price=250, got %s", a.AvgBuyPrice)
	}
	if !a.AvgSellPrice.Equal(decimal.NewFromInt(275)) {
		t.Errorf("Expected avg_sell_price=275, got %s", a.AvgSellPrice)
	}
	if a.NetQuantity != 60 {
		t.Errorf("Expected net_quantity=60, got %d", a.NetQuantity)
	}
	want := decimal.NewFromFloat(233.33)
	if !a.AvgHoldingPrice.Round(2).Equal(want) {
		t.Errorf("Expected avg_holding_price=233.33, got %s", a.AvgHoldingPrice)
	}
}

func TestZeroDenominatorPolicy(t *testing.T) {
	a := &types.BrokerStockAggregate{
		SellQuantity: 10,
		SellAmount:   decimal.NewFromInt(1000),
	}
	Recompute(a)

	if !a.AvgBuyPrice.IsZero() {
		t.Errorf("Expected avg_buy_price=0 when buy_quantity=0, got %s", a.AvgBuyPrice)
	}
	if a.NetQuantity != -10 {
		t.Errorf("Expected net_quantity=-10, got %d", a.NetQuantity)
	}
	if !a.AvgHoldingPrice.IsZero() {
		t.Errorf("Expected avg_holding_price=0 when net short, got %s", a.AvgHoldingPrice)
	}

	flat := &types.BrokerStockAggregate{
		BuyQuantity:  10,
		BuyAmount:    decimal.NewFromInt(1000),
		SellQuantity: 10,
		SellAmount:   decimal.NewFromInt(900),
	}
	Recompute(flat)
	if flat.NetQuantity != 0 {
		t.Errorf("Expected net_quantity=0, got %d", flat.NetQuantity)
	}
	if !flat.AvgHoldingPrice.IsZero() {
		t.Errorf("Expected avg_holding_price=0 when flat, got %s", flat.AvgHoldingPrice)
	}
}

func TestSameBrokerBothSides(t *testing.T) {
	aggs, err := Build(batch(
		txn("1", "ABC", "B1", "Broker One", "B1", "Broker One", 10, 100, 1000),
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(aggs) != 1 {
		t.Fatalf("Expected 1 row when buyer and seller match, got %d", len(aggs))
	}

	a := aggs[types.AggregateKey{BrokerID: "B1", BrokerName: "Broker One", Symbol: "ABC"}]
	if a.BuyQuantity != 10 || a.SellQuantity != 10 {
		t.Errorf("Expected both sums fed with no netting, got buy=%d sell=%d", a.BuyQuantity, a.SellQuantity)
	}
	if a.NetQuantity != 0 {
		t.Errorf("Expected net_quantity=0, got %d", a.NetQuantity)
	}
}

func TestBrokerNameVariantsAreDistinctRows(t *testing.T) {
	aggs, err := Build(batch(
		txn("1", "ABC", "B1", "Broker One", "B9", "Other", 10, 100, 1000),
		txn("2", "ABC", "B1", "Broker One Ltd", "B9", "Other", 5, 100, 500),
	))
	if err != nil {
		t.Fatal(err)
	}
	v1 := aggs[types.AggregateKey{BrokerID: "B1", BrokerName: "Broker One", Symbol: "ABC"}]
	v2 := aggs[types.AggregateKey{BrokerID: "B1", BrokerName: "Broker One Ltd", Symbol: "ABC"}]
	if v1 == nil || v2 == nil {
		t.Fatal("Expected distinct rows per (id, name) combination")
	}
	if v1.BuyQuantity != 10 || v2.BuyQuantity != 5 {
		t.Errorf("Expected separate sums per name variant, got %d and %d", v1.BuyQuantity, v2.BuyQuantity)
	}
}

func TestBuildRejectsBadRecords(t *testing.T) {
	bad := txn("1", "ABC", "B1", "Broker One", "B2", "Broker Two", 0, 100, 1000)
	if _, err := Build(batch(bad)); err == nil {
		t.Error("Expected error for zero quantity")
	}

	bad = txn("2", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, -1, 1000)
	if _, err := Build(batch(bad)); err == nil {
		t.Error("Expected error for negative rate")
	}

	bad = txn("3", "ABC", "B1", "Broker One", "B2", "Broker Two", 10, 100, -5)
	if _, err := Build(batch(bad)); err == nil {
		t.Error("Expected error for negative amount")
	}
}

func TestAmountIsAuthoritative(t *testing.T) {
	// source rounding: amount differs slightly from qty*rate
	aggs, err := Build(batch(
		txn("1", "ABC", "B1", "Broker One", "B2", "Broker Two", 3, 33.33, 100),
	))
	if err != nil {
		t.Fatal(err)
	}
	a := aggs[types.AggregateKey{BrokerID: "B1", BrokerName: "Broker One", Symbol: "ABC"}]
	if !a.BuyAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected amount taken from record (100), got %s", a.BuyAmount)
	}
}

func TestSafeDiv(t *testing.T) {
	if !SafeDiv(decimal.NewFromInt(100), 0).IsZero() {
		t.Error("Expected zero for zero denominator")
	}
	if !SafeDiv(decimal.NewFromInt(100), -5).IsZero() {
		t.Error("Expected zero for negative denominator")
	}
	got := SafeDiv(decimal.NewFromInt(100), 4)
	if !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected 25, got %s", got)
	}
}
