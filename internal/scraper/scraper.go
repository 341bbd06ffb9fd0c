// Package scraper fetches the merolagani floorsheet and turns its paginated
// HTML table into one batch of transaction records per run.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/bikky983/floorsheet/internal/interfaces"
	"github.com/bikky983/floorsheet/internal/logger"
	"github.com/bikky983/floorsheet/internal/types"
)

// Params configures the scraper.
type Params struct {
	BaseURL   string
	MaxPages  int // 0 scrapes every page the site reports
	DelayMin  time.Duration
	DelayMax  time.Duration
	Timeout   time.Duration
	UserAgent string
}

// Scraper walks the floorsheet pages and collects transaction records.
type Scraper struct {
	params Params
}

var _ interfaces.FloorsheetScraper = (*Scraper)(nil)

func New(params Params) *Scraper {
	return &Scraper{params: params}
}

// Scrape fetches all floorsheet pages and returns the batch. Pages that fail
// after the first are skipped rather than aborting the run; the first page
// is required because it carries the trading date and the page count.
func (s *Scraper) Scrape(ctx context.Context) (*types.Floorsheet, error) {
	first, err := s.fetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first floorsheet page: %w", err)
	}

	date := ExtractDate(first)
	totalPages := ExtractTotalPages(first)
	if s.params.MaxPages > 0 && totalPages > s.params.MaxPages {
		totalPages = s.params.MaxPages
	}

	fs := &types.Floorsheet{Date: date, TotalPages: totalPages}
	fs.Transactions = ParseTransactions(ctx, first, date)
	logger.Scrape(ctx, date, 1, totalPages, len(fs.Transactions))

	for page := 2; page <= totalPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s.randomDelay()

		doc, err := s.fetchPage(ctx, page)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to fetch floorsheet page", err, "page", page)
			continue
		}
		txns := ParseTransactions(ctx, doc, date)
		fs.Transactions = append(fs.Transactions, txns...)
		logger.Scrape(ctx, date, page, totalPages, len(txns))
	}

	return fs, nil
}

// fetchPage visits one floorsheet page and returns its parsed document.
func (s *Scraper) fetchPage(ctx context.Context, page int) (*goquery.Document, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(s.params.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.params.Timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.params.UserAgent)
	})

	var doc *goquery.Document
	var docErr error
	c.OnResponse(func(r *colly.Response) {
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			docErr = err
			return
		}
		doc = d
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Floorsheet request failed", err, "url", r.Request.URL.String())
	})

	pageURL := s.pageURL(page)
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	if docErr != nil {
		return nil, docErr
	}
	if doc == nil {
		return nil, fmt.Errorf("no response from %s", pageURL)
	}
	return doc, nil
}

// pageURL builds the URL for a page number; page 1 is the bare base URL.
func (s *Scraper) pageURL(page int) string {
	if page <= 1 {
		return s.params.BaseURL
	}
	u, err := url.Parse(s.params.BaseURL)
	if err != nil {
		return s.params.BaseURL
	}
	q := u.Query()
	q.Set("pg", fmt.Sprint(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// randomDelay sleeps a random interval between page fetches to stay polite
// to the server.
func (s *Scraper) randomDelay() {
	min, max := s.params.DelayMin, s.params.DelayMax
	if max <= min {
		if min > 0 {
			time.Sleep(min)
		}
		return
	}
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
