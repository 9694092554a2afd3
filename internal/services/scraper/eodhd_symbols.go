package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/eodhd"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

// SourceEODHD identifies listings from the EODHD exchange symbol list.
const SourceEODHD = "eodhd"

// EODHDSymbols lists B3 equities from the EODHD exchange symbol list.
type EODHDSymbols struct {
	client *eodhd.Client
	logger arbor.ILogger
}

var _ interfaces.CatalogSource = (*EODHDSymbols)(nil)

// NewEODHDSymbols creates the symbol-list source.
func NewEODHDSymbols(client *eodhd.Client, logger arbor.ILogger) *EODHDSymbols {
	return &EODHDSymbols{client: client, logger: logger}
}

// Name returns the source name.
func (s *EODHDSymbols) Name() string {
	return SourceEODHD
}

// Listings returns the common and preferred shares traded on B3.
func (s *EODHDSymbols) Listings(ctx context.Context) ([]models.CatalogEntry, error) {
	symbols, err := s.client.GetExchangeSymbols(ctx, eodhd.ExchangeSA)
	if err != nil {
		return nil, fmt.Errorf("eodhd symbol list: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(symbols))
	skipped := 0
	for _, sym := range symbols {
		if !sym.IsEquity() {
			skipped++
			continue
		}
		ticker, err := common.ValidateTicker(sym.Code)
		if err != nil {
			skipped++
			continue
		}
		currency := sym.Currency
		if currency == "" {
			currency = "BRL"
		}
		entries = append(entries, models.CatalogEntry{
			Ticker:   ticker,
			Code:     models.TickerCode(ticker),
			Name:     strings.TrimSpace(sym.Name),
			Sector:   models.PlaceholderSector,
			Industry: models.PlaceholderSector,
			ISIN:     sym.Isin,
			Currency: currency,
			Exchange: "B3",
			Country:  "Brazil",
			Source:   SourceEODHD,
		})
	}

	s.logger.Debug().
		Int("listings", len(entries)).
		Int("skipped", skipped).
		Msg("Loaded EODHD symbol list")

	return entries, nil
}
