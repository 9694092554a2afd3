// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/barsi/internal/models"
)

//go:generate mockgen -destination=mocks/quote_provider_mock.go -package=mocks github.com/ternarybob/barsi/internal/interfaces QuoteProvider

// QuoteProvider fetches market and fundamental data for one ticker.
// Any field of the payload may be absent.
type QuoteProvider interface {
	// Name identifies the provider in logs and rows.
	Name() string

	// Fetch returns the price series, 5-year history, info blob and dividend events.
	Fetch(ctx context.Context, ticker string) (*models.QuotePayload, error)

	// Profile returns only the descriptive info blob (name, sector, industry,
	// market cap, currency, exchange, country). Used for catalog enrichment.
	Profile(ctx context.Context, ticker string) (map[string]any, error)
}

// CatalogSource lists the tickers known to an external listing.
// It may return no entries; callers must tolerate that.
type CatalogSource interface {
	Name() string
	Listings(ctx context.Context) ([]models.CatalogEntry, error)
}
