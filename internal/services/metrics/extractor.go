// Package metrics derives StockRow fields from a raw provider payload.
// Every field is computed independently; a missing or malformed input only makes
// its own field unavailable.
package metrics

import (
	"maps"
	"slices"
	"time"

	"github.com/ternarybob/barsi/internal/models"
)

const (
	dividendWindowTTM = 365 * 24 * time.Hour
	historyYears      = 5
)

// Extractor computes per-field metrics. The clock is injectable so trailing windows
// can be tested.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for trailing windows.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates a new metric extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds a row from the payload. The criteria score is left empty; the
// caller rates the row once extraction is done.
func (e *Extractor) Extract(ticker string, p *models.QuotePayload) models.StockRow {
	now := e.now()
	if p == nil {
		p = &models.QuotePayload{}
	}
	info := p.Info
	if info == nil {
		info = map[string]any{}
	}

	dps := DividendPerShareTTM(p.Dividends, now)
	paysDividends := false
	if v, ok := dps.Get(); ok && v > 0 {
		paysDividends = true
	}

	sector, _ := text(info, models.InfoSector)
	currency, ok := text(info, models.InfoCurrency)
	if !ok {
		currency = "BRL"
	}

	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = now
	}

	return models.StockRow{
		Ticker:                  ticker,
		Name:                    Name(ticker, info),
		Sector:                  sector,
		CurrentPrice:            CurrentPrice(p.Prices, info),
		PriceChangePct:          PriceChangePct(p.Prices),
		CurrentDividendYieldPct: CurrentDividendYieldPct(info),
		AvgDividendYield5yPct:   AvgDividendYield5yPct(p.Dividends, p.History, now),
		DividendPerShareTTM:     dps,
		PaysDividends:           paysDividends,
		PERatio:                 PERatio(info),
		PBRatio:                 field(info, models.InfoPriceToBook),
		ROEPct:                  percent(info, models.InfoReturnOnEquity),
		DebtToEquity:            field(info, models.InfoDebtToEquity),
		NetMarginPct:            percent(info, models.InfoProfitMargins),
		MarketCap:               field(info, models.InfoMarketCap),
		Currency:                currency,
		Source:                  p.Source,
		FetchedAt:               fetchedAt,
	}
}

// Name returns the long name, then the short name, then the ticker code.
func Name(ticker string, info map[string]any) string {
	if name, ok := text(info, models.InfoLongName); ok {
		return name
	}
	if name, ok := text(info, models.InfoShortName); ok {
		return name
	}
	return models.TickerCode(ticker)
}

// CurrentPrice is the last close of the series, falling back to the info blob's
// currentPrice and then regularMarketPrice.
func CurrentPrice(prices []models.PricePoint, info map[string]any) models.Value {
	if n := len(prices); n > 0 {
		if v := toValue(prices[n-1].Close); v.Available() && v.Float() != 0 {
			return v
		}
	}
	return field(info, models.InfoCurrentPrice).Or(field(info, models.InfoRegularMarketPrice))
}

// PriceChangePct compares the two most recent closes.
func PriceChangePct(prices []models.PricePoint) models.Value {
	n := len(prices)
	if n < 2 {
		return models.Unavailable(models.ReasonInsufficient)
	}
	last, prev := prices[n-1].Close, prices[n-2].Close
	if prev == 0 {
		return models.Unavailable(models.ReasonZero)
	}
	return toValue((last - prev) / prev * 100)
}

// CurrentDividendYieldPct converts the fractional dividendYield into percent.
func CurrentDividendYieldPct(info map[string]any) models.Value {
	return percent(info, models.InfoDividendYield)
}

// AvgDividendYield5yPct averages the yearly dividend sums over the trailing five
// years and divides by the average close over the same period.
//
// The ratio mixes an annual dividend with a long-run average price. It is kept as
// written for compatibility with existing dashboards; it is not a standard yield.
func AvgDividendYield5yPct(dividends []models.DividendEvent, history []models.PricePoint, now time.Time) models.Value {
	if len(dividends) == 0 || len(history) == 0 {
		return models.Unavailable(models.ReasonInsufficient)
	}
	cutoff := now.AddDate(-historyYears, 0, 0)

	sums := yearlySums(dividends, cutoff)
	if len(sums) == 0 {
		return models.Unavailable(models.ReasonInsufficient)
	}
	yearly := make([]float64, 0, len(sums))
	for _, year := range slices.Sorted(maps.Keys(sums)) {
		yearly = append(yearly, sums[year])
	}

	closes := closesSince(history, cutoff)
	if len(closes) == 0 {
		return models.Unavailable(models.ReasonInsufficient)
	}
	avgPrice := Mean(closes)
	if avgPrice == 0 {
		return models.Unavailable(models.ReasonZero)
	}
	return toValue(Mean(yearly) / avgPrice * 100)
}

// DividendPerShareTTM sums dividend events in the trailing 365 days. A ticker
// with a dividend history but nothing in the window reports 0.
func DividendPerShareTTM(dividends []models.DividendEvent, now time.Time) models.Value {
	if len(dividends) == 0 {
		return models.Unavailable(models.ReasonMissing)
	}
	return toValue(sumSince(dividends, now.Add(-dividendWindowTTM)))
}

// PERatio prefers trailing P/E and falls back to forward P/E.
func PERatio(info map[string]any) models.Value {
	return field(info, models.InfoTrailingPE).Or(field(info, models.InfoForwardPE))
}

func percent(info map[string]any, key string) models.Value {
	return field(info, key).Map(func(f float64) float64 { return f * 100 })
}
