package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/types"
)

var (
	dateRe  = regexp.MustCompile(`As of\s+(\d{4}/\d{2}/\d{2})`)
	pagesRe = regexp.MustCompile(`Total pages:\s*(\d+)`)
)

// ExtractDate pulls the trading date from the page's "As of YYYY/MM/DD"
// marker, normalized to ISO form. Empty when the marker is missing.
func ExtractDate(doc *goquery.Document) string {
	m := dateRe.FindStringSubmatch(doc.Text())
	if m == nil {
		return ""
	}
	t, err := time.Parse("2006/01/02", m[1])
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ExtractTotalPages reads the pagination total, defaulting to 1 when it
// cannot be determined.
func ExtractTotalPages(doc *goquery.Document) int {
	m := pagesRe.FindStringSubmatch(doc.Text())
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseTransactions extracts transaction records from the floorsheet table.
// Malformed rows are skipped with a warning; rows that survive are
// well-formed for the aggregator.
func ParseTransactions(ctx context.Context, doc *goquery.Document, date string) []types.Transaction {
	var txns []types.Transaction

	doc.Find("table.table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cols := row.Find("td")
		if cols.Length() < 8 {
			return
		}

		symbolCell := cols.Eq(2).Find("a")
		buyerCell := cols.Eq(3).Find("a")
		sellerCell := cols.Eq(4).Find("a")

		quantity, err := parseQuantity(cols.Eq(5).Text())
		if err != nil {
			logger.Warn(ctx, "Skipping floorsheet row with bad quantity", "row", i, "error", err)
			return
		}
		rate, err := parseAmount(cols.Eq(6).Text())
		if err != nil {
			logger.Warn(ctx, "Skipping floorsheet row with bad rate", "row", i, "error", err)
			return
		}
		amount, err := parseAmount(cols.Eq(7).Text())
		if err != nil {
			logger.Warn(ctx, "Skipping floorsheet row with bad amount", "row", i, "error", err)
			return
		}

		txns = append(txns, types.Transaction{
			Date:          date,
			TransactionNo: strings.TrimSpace(cols.Eq(1).Text()),
			Symbol:        strings.TrimSpace(symbolCell.Text()),
			SymbolFull:    strings.TrimSpace(symbolCell.AttrOr("title", "")),
			BuyerID:       strings.TrimSpace(buyerCell.Text()),
			BuyerName:     strings.TrimSpace(buyerCell.AttrOr("title", "")),
			SellerID:      strings.TrimSpace(sellerCell.Text()),
			SellerName:    strings.TrimSpace(sellerCell.AttrOr("title", "")),
			Quantity:      quantity,
			Rate:          rate,
			Amount:        amount,
		})
	})

	return txns
}

// parseQuantity parses an integer cell with thousands separators.
func parseQuantity(s string) (int64, error) {
	return strconv.ParseInt(cleanNumber(s), 10, 64)
}

// parseAmount parses a decimal cell with thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(cleanNumber(s))
}

func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
