package interfaces

import (
	"context"

	"github.com/bikky983/floorsheet/internal/types"
)

// FloorsheetScraper produces one batch of transaction records per run.
type FloorsheetScraper interface {
	Scrape(ctx context.Context) (*types.Floorsheet, error)
}
