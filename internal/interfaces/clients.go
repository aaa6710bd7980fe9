// Package interfaces defines collaborator contracts for the bridge
package interfaces

import (
	"context"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// MarketDataClient is the market data provider contract. Both asset
// tickers and CODE→EUR FX pairs go through the same daily-bars call; a
// second call returns sparse instrument metadata.
//
// An empty or undersized series is a valid response: downstream code
// treats it as insufficient history, not as a fetch failure.
type MarketDataClient interface {
	// GetDailyBars returns daily closing bars for the symbol over the
	// requested range (e.g. "5d", "2y", "max"), ascending by date.
	GetDailyBars(ctx context.Context, symbol string, barRange string) (models.PriceSeries, error)

	// GetQuoteMetadata returns the sparse valuation/quote metadata for
	// the symbol. Missing fields are nil, never zero.
	GetQuoteMetadata(ctx context.Context, symbol string) (*models.QuoteMetadata, error)
}

// UniverseSource supplies the instrument rows for one portfolio run.
type UniverseSource interface {
	Load(ctx context.Context) ([]models.Instrument, error)
}
