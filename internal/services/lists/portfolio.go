package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/rating"
)

// Holding is one portfolio position.
type Holding struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

// DividendForecast is the expected yearly dividend income of the portfolio,
// based on each holding's trailing twelve month dividend per share.
type DividendForecast struct {
	PerTicker map[string]decimal.Decimal `json:"per_ticker"`
	Total     decimal.Decimal            `json:"total"`
}

// Portfolio maps tickers to held quantities.
type Portfolio struct {
	store  interfaces.DocumentStore
	logger arbor.ILogger

	mu       sync.RWMutex
	holdings map[string]float64
}

// NewPortfolio creates an empty portfolio backed by store.
func NewPortfolio(store interfaces.DocumentStore, logger arbor.ILogger) *Portfolio {
	return &Portfolio{
		store:    store,
		logger:   logger,
		holdings: make(map[string]float64),
	}
}

// Load reads the portfolio document. A missing document is an empty portfolio.
func (p *Portfolio) Load(ctx context.Context) ([]Holding, error) {
	data, err := p.store.Load(ctx, interfaces.DocumentPortfolio)
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		p.set(nil)
		return p.Holdings(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	holdings, migrated, err := decodePortfolio(data)
	if err != nil {
		return nil, err
	}
	p.set(holdings)

	if migrated {
		p.logger.Info().Int("holdings", len(holdings)).Msg("Migrated legacy portfolio")
		if err := p.Save(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to save migrated portfolio")
		}
	}
	return p.Holdings(), nil
}

// Save persists the current holdings.
func (p *Portfolio) Save(ctx context.Context) error {
	p.mu.RLock()
	doc := models.Portfolio{
		SchemaVersion: models.PortfolioSchemaVersion,
		Holdings:      maps.Clone(p.holdings),
	}
	p.mu.RUnlock()

	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}
	if err := p.store.Save(ctx, interfaces.DocumentPortfolio, data); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

// Set records quantity for ticker and saves. A zero quantity removes the position.
func (p *Portfolio) Set(ctx context.Context, ticker string, quantity float64) error {
	normalized, err := common.ValidateTicker(ticker)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTicker, err)
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		_, err := p.Remove(ctx, normalized)
		return err
	}

	p.mu.Lock()
	p.holdings[normalized] = quantity
	p.mu.Unlock()
	return p.Save(ctx)
}

// Remove deletes the position for ticker and saves. It reports false when absent.
func (p *Portfolio) Remove(ctx context.Context, ticker string) (bool, error) {
	normalized := common.NormalizeTicker(ticker)

	p.mu.Lock()
	if _, ok := p.holdings[normalized]; !ok {
		p.mu.Unlock()
		return false, nil
	}
	delete(p.holdings, normalized)
	p.mu.Unlock()

	return true, p.Save(ctx)
}

// Holdings returns the positions sorted by ticker.
func (p *Portfolio) Holdings() []Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tickers := slices.Sorted(maps.Keys(p.holdings))
	out := make([]Holding, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, Holding{Ticker: t, Quantity: p.holdings[t]})
	}
	return out
}

// Tickers returns the held tickers sorted.
func (p *Portfolio) Tickers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.holdings))
}

// TotalValue sums current price times quantity over the holdings found in rows.
// Holdings without a row or without a price contribute nothing.
func (p *Portfolio) TotalValue(rows []models.StockRow) decimal.Decimal {
	byTicker := indexRows(rows)
	total := decimal.Zero
	for _, h := range p.Holdings() {
		row, ok := byTicker[h.Ticker]
		if !ok {
			continue
		}
		price, ok := row.CurrentPrice.Get()
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(h.Quantity)))
	}
	return total
}

// FutureDividends multiplies each holding by its trailing dividend per share.
// Every holding appears in PerTicker, with zero when no dividend is known.
func (p *Portfolio) FutureDividends(rows []models.StockRow) DividendForecast {
	byTicker := indexRows(rows)
	forecast := DividendForecast{
		PerTicker: make(map[string]decimal.Decimal),
		Total:     decimal.Zero,
	}
	for _, h := range p.Holdings() {
		amount := decimal.Zero
		if row, ok := byTicker[h.Ticker]; ok {
			if dps, ok := row.DividendPerShareTTM.Get(); ok && dps > 0 {
				amount = decimal.NewFromFloat(dps).Mul(decimal.NewFromFloat(h.Quantity))
			}
		}
		forecast.PerTicker[h.Ticker] = amount
		forecast.Total = forecast.Total.Add(amount)
	}
	return forecast
}

// BarsiFilter returns the tickers of rows rated Excellent or Good, in row order.
func BarsiFilter(rows []models.StockRow) []string {
	var tickers []string
	for _, row := range rows {
		if rating.Qualifies(row.Score.Tier) {
			tickers = append(tickers, row.Ticker)
		}
	}
	return tickers
}

func (p *Portfolio) set(holdings map[string]float64) {
	if holdings == nil {
		holdings = make(map[string]float64)
	}
	p.mu.Lock()
	p.holdings = holdings
	p.mu.Unlock()
}

func indexRows(rows []models.StockRow) map[string]models.StockRow {
	byTicker := make(map[string]models.StockRow, len(rows))
	for _, row := range rows {
		if _, seen := byTicker[row.Ticker]; !seen {
			byTicker[row.Ticker] = row
		}
	}
	return byTicker
}

// decodePortfolio reads the current layout or the legacy flat {ticker: quantity} map.
func decodePortfolio(data []byte) (map[string]float64, bool, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, false, fmt.Errorf("failed to decode portfolio: %w", err)
	}

	if _, ok := keys["holdings"]; ok {
		var doc models.Portfolio
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, false, fmt.Errorf("failed to decode portfolio: %w", err)
		}
		if err := doc.Validate(); err != nil {
			return nil, false, err
		}
		return doc.Holdings, false, nil
	}

	var legacy map[string]float64
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, false, fmt.Errorf("failed to decode legacy portfolio: %w", err)
	}
	holdings := make(map[string]float64, len(legacy))
	for ticker, qty := range legacy {
		normalized, err := common.ValidateTicker(ticker)
		if err != nil || qty <= 0 {
			continue
		}
		holdings[normalized] += qty
	}
	return holdings, true, nil
}
