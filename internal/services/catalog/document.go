package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/models"
)

// legacyDocument is the {last_updated, stocks, total_stocks} layout written by
// earlier releases.
type legacyDocument struct {
	LastUpdated string                 `json:"last_updated"`
	Stocks      map[string]legacyStock `json:"stocks"`
	TotalStocks int                    `json:"total_stocks"`
}

type legacyStock struct {
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	ISIN      string  `json:"isin"`
	Link      string  `json:"link"`
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchange"`
	Country   string  `json:"country"`
	MarketCap float64 `json:"market_cap"`
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// encodeCatalog serialises the catalog document.
func encodeCatalog(c *models.Catalog) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return data, nil
}

// decodeCatalog reads either document layout. migrated reports a legacy document.
func decodeCatalog(data []byte) (c *models.Catalog, migrated bool, err error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if _, ok := keys["entries"]; !ok {
		if _, legacy := keys["stocks"]; legacy {
			c, err := migrateLegacy(data)
			return c, true, err
		}
	}

	var doc models.Catalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]*models.CatalogEntry)
	}
	if err := doc.Validate(); err != nil {
		return nil, false, err
	}
	return &doc, false, nil
}

func migrateLegacy(data []byte) (*models.Catalog, error) {
	var legacy legacyDocument
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode legacy catalog: %w", err)
	}

	entries := make(map[string]*models.CatalogEntry, len(legacy.Stocks))
	for key, s := range legacy.Stocks {
		ticker, err := common.ValidateTicker(key)
		if err != nil {
			continue
		}
		marketCap := models.Unavailable(models.ReasonMissing)
		if s.MarketCap > 0 {
			marketCap = models.Of(s.MarketCap)
		}
		link := s.Link
		if link != "" && models.Validator().Var(link, "url") != nil {
			link = ""
		}
		code := models.TickerCode(ticker)
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = code
		}
		entries[ticker] = &models.CatalogEntry{
			Ticker:    ticker,
			Code:      code,
			Name:      name,
			Sector:    placeholderOr(s.Sector),
			Industry:  placeholderOr(s.Industry),
			ISIN:      s.ISIN,
			Link:      link,
			Currency:  s.Currency,
			Exchange:  s.Exchange,
			Country:   s.Country,
			MarketCap: marketCap,
			Source:    "legacy",
		}
	}

	c := models.NewCatalog(entries, time.Time{})
	c.LastUpdated = parseLegacyTime(legacy.LastUpdated)
	return c, nil
}

// parseLegacyTime reads the naive local timestamps of the legacy layout. An
// unreadable stamp yields nil, which reads as stale.
func parseLegacyTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func placeholderOr(s string) string {
	if models.IsPlaceholder(s) {
		return models.PlaceholderSector
	}
	return strings.TrimSpace(s)
}
