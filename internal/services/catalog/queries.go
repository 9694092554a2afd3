package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/models"
)

// DefaultSearchLimit caps search results when no limit is configured.
const DefaultSearchLimit = 20

// Stats summarises the loaded catalog.
type Stats struct {
	TotalStocks  int        `json:"total_stocks"`
	TotalSectors int        `json:"total_sectors"`
	LastUpdated  *time.Time `json:"last_updated"`
	CacheValid   bool       `json:"cache_valid"`
	State        State      `json:"state"`
}

// AllTickers returns every catalog ticker in ascending order.
func (b *Builder) AllTickers() []string {
	return b.catalog().SortedTickers()
}

// Entry returns the catalog entry for ticker. The ticker is normalised first.
func (b *Builder) Entry(ticker string) (*models.CatalogEntry, bool) {
	c := b.catalog()
	if c == nil {
		return nil, false
	}
	e, ok := c.Entries[common.NormalizeTicker(ticker)]
	return e, ok
}

// Sectors returns the distinct known sectors, sorted. Placeholders are omitted.
func (b *Builder) Sectors() []string {
	seen := make(map[string]struct{})
	for _, e := range b.entries() {
		if models.IsPlaceholder(e.Sector) {
			continue
		}
		seen[e.Sector] = struct{}{}
	}
	sectors := make([]string, 0, len(seen))
	for s := range seen {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)
	return sectors
}

// TickersBySector returns the tickers whose sector equals sector, ignoring case.
func (b *Builder) TickersBySector(sector string) []string {
	want := strings.TrimSpace(sector)
	if want == "" {
		return nil
	}
	var tickers []string
	for _, e := range b.entries() {
		if strings.EqualFold(e.Sector, want) {
			tickers = append(tickers, e.Ticker)
		}
	}
	return tickers
}

// Search matches query against ticker, code, name and industry, case-insensitively.
// Results are in ticker order and capped at the configured limit. An empty query
// matches nothing.
func (b *Builder) Search(query string) []*models.CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var results []*models.CatalogEntry
	for _, e := range b.entries() {
		if len(results) >= b.opts.SearchLimit {
			break
		}
		if matches(e, q) {
			results = append(results, e)
		}
	}
	return results
}

// BESSTUniverse returns the tickers in the Barsi sectors: banks, energy,
// sanitation, insurance and telecom.
func (b *Builder) BESSTUniverse() []string {
	var tickers []string
	for _, e := range b.entries() {
		if IsBESSTSector(e) {
			tickers = append(tickers, e.Ticker)
		}
	}
	return tickers
}

// Stats reports catalog totals and freshness.
func (b *Builder) Stats() Stats {
	snap := b.Snapshot()
	return Stats{
		TotalStocks:  len(snap.Catalog.Entries),
		TotalSectors: len(b.Sectors()),
		LastUpdated:  snap.Catalog.LastUpdated,
		CacheValid:   snap.State == StateFresh,
		State:        snap.State,
	}
}

func (b *Builder) catalog() *models.Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// entries returns the catalog entries in ticker order.
func (b *Builder) entries() []*models.CatalogEntry {
	c := b.catalog()
	if c == nil {
		return nil
	}
	tickers := c.SortedTickers()
	out := make([]*models.CatalogEntry, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, c.Entries[t])
	}
	return out
}

func matches(e *models.CatalogEntry, q string) bool {
	for _, field := range []string{e.Ticker, e.Code, e.Name, e.Industry} {
		if models.IsPlaceholder(field) {
			continue
		}
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
