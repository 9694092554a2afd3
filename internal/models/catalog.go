package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// CatalogSchemaVersion is the current on-disk catalog layout.
// Version 0 is the legacy {last_updated, stocks, total_stocks} document.
const CatalogSchemaVersion = 1

// PlaceholderSector is used when neither source knows the sector.
const PlaceholderSector = "N/A"

// CatalogEntry is the metadata known about one ticker in the universe.
type CatalogEntry struct {
	Ticker    string `json:"ticker" validate:"required,b3ticker"`
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry,omitempty"`
	ISIN      string `json:"isin,omitempty"`
	Link      string `json:"link,omitempty" validate:"omitempty,url"`
	Currency  string `json:"currency,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	Country   string `json:"country,omitempty"`
	MarketCap Value  `json:"market_cap"`
	Source    string `json:"source,omitempty"`
	Enriched  bool   `json:"enriched"`
}

// Catalog is the persisted universe of tickers. It is replaced wholesale on rebuild.
type Catalog struct {
	SchemaVersion int                      `json:"schema_version" validate:"eq=1"`
	LastUpdated   *time.Time               `json:"last_updated"`
	Entries       map[string]*CatalogEntry `json:"entries" validate:"dive"`
	TotalCount    int                      `json:"total_count" validate:"gte=0"`
}

// NewCatalog builds a catalog stamped with the given time.
func NewCatalog(entries map[string]*CatalogEntry, at time.Time) *Catalog {
	if entries == nil {
		entries = make(map[string]*CatalogEntry)
	}
	stamp := at.UTC()
	return &Catalog{
		SchemaVersion: CatalogSchemaVersion,
		LastUpdated:   &stamp,
		Entries:       entries,
		TotalCount:    len(entries),
	}
}

// Age returns how long ago the catalog was built. A catalog that was never built
// reports ok=false.
func (c *Catalog) Age(now time.Time) (time.Duration, bool) {
	if c == nil || c.LastUpdated == nil {
		return 0, false
	}
	return now.Sub(*c.LastUpdated), true
}

// SortedTickers returns the catalog tickers in ascending order.
func (c *Catalog) SortedTickers() []string {
	if c == nil {
		return nil
	}
	tickers := make([]string, 0, len(c.Entries))
	for t := range c.Entries {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Validate checks the catalog document against its schema.
func (c *Catalog) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}
	for key, entry := range c.Entries {
		if entry == nil {
			return fmt.Errorf("catalog entry %s is null", key)
		}
		if entry.Ticker != key {
			return fmt.Errorf("catalog entry key %s does not match ticker %s", key, entry.Ticker)
		}
	}
	if c.TotalCount != len(c.Entries) {
		return fmt.Errorf("catalog total_count %d does not match %d entries", c.TotalCount, len(c.Entries))
	}
	return nil
}

// IsPlaceholder reports whether a metadata string carries no information.
func IsPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "-", "--", "unknown", "none", "null", "desconhecido":
		return true
	}
	return false
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the b3ticker rule registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("b3ticker", func(fl validator.FieldLevel) bool {
			return IsB3Ticker(fl.Field().String())
		})
	})
	return validate
}

// IsB3Ticker reports whether s looks like "PETR4.SA": a .SA suffix and a 4 to 6
// character code whose first four characters are letters.
func IsB3Ticker(s string) bool {
	if !strings.HasSuffix(s, ".SA") {
		return false
	}
	code := strings.TrimSuffix(s, ".SA")
	if len(code) < 4 || len(code) > 6 {
		return false
	}
	for i := 0; i < 4; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	for i := 4; i < len(code); i++ {
		c := code[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
