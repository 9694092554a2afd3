// Package quotes adapts market data vendors to the QuoteProvider interface.
// Each provider translates its native fields into the flat Info* vocabulary read
// by the metric extractor.
package quotes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/eodhd"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

// ProviderEODHD identifies the EODHD provider.
const ProviderEODHD = "eodhd"

// recentCloses is the number of trailing closes returned as the short price series.
const recentCloses = 2

// fundamentalsPaths maps info keys to their location in the EODHD fundamentals document.
var fundamentalsPaths = map[string]string{
	models.InfoLongName:       "$.General.Name",
	models.InfoShortName:      "$.General.Code",
	models.InfoSector:         "$.General.Sector",
	models.InfoIndustry:       "$.General.Industry",
	models.InfoCurrency:       "$.General.CurrencyCode",
	models.InfoExchange:       "$.General.Exchange",
	models.InfoCountry:        "$.General.CountryName",
	models.InfoISIN:           "$.General.ISIN",
	models.InfoMarketCap:      "$.Highlights.MarketCapitalization",
	models.InfoTrailingPE:     "$.Highlights.PERatio",
	models.InfoDividendYield:  "$.Highlights.DividendYield",
	models.InfoReturnOnEquity: "$.Highlights.ReturnOnEquityTTM",
	models.InfoProfitMargins:  "$.Highlights.ProfitMargin",
	models.InfoForwardPE:      "$.Valuation.ForwardPE",
	models.InfoPriceToBook:    "$.Valuation.PriceBookMRQ",
}

// profileKeys are the descriptive keys returned by Profile.
var profileKeys = []string{
	models.InfoLongName,
	models.InfoShortName,
	models.InfoSector,
	models.InfoIndustry,
	models.InfoCurrency,
	models.InfoExchange,
	models.InfoCountry,
	models.InfoISIN,
	models.InfoMarketCap,
}

// EODHDProvider fetches quotes, dividends and fundamentals from EODHD.
type EODHDProvider struct {
	client       *eodhd.Client
	logger       arbor.ILogger
	historyYears int
	now          func() time.Time
}

var _ interfaces.QuoteProvider = (*EODHDProvider)(nil)

// EODHDOption configures an EODHDProvider.
type EODHDOption func(*EODHDProvider)

// WithHistoryYears sets how many years of daily closes are fetched.
func WithHistoryYears(years int) EODHDOption {
	return func(p *EODHDProvider) {
		if years > 0 {
			p.historyYears = years
		}
	}
}

// WithEODHDClock overrides the clock used to compute the history window.
func WithEODHDClock(now func() time.Time) EODHDOption {
	return func(p *EODHDProvider) {
		p.now = now
	}
}

// NewEODHDProvider creates a new EODHD quote provider.
func NewEODHDProvider(client *eodhd.Client, logger arbor.ILogger, opts ...EODHDOption) *EODHDProvider {
	p := &EODHDProvider{
		client:       client,
		logger:       logger,
		historyYears: 5,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *EODHDProvider) Name() string {
	return ProviderEODHD
}

// Fetch retrieves the full payload for one ticker. Fundamentals are required;
// a failed price or dividend call only leaves that part of the payload empty.
func (p *EODHDProvider) Fetch(ctx context.Context, ticker string) (*models.QuotePayload, error) {
	symbol := common.ParseTicker(ticker).EODHDSymbol()
	now := p.now()

	doc, err := p.client.GetFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("eodhd fundamentals for %s: %w", symbol, err)
	}

	payload := &models.QuotePayload{
		Ticker:    ticker,
		Source:    ProviderEODHD,
		Info:      infoFromFundamentals(doc),
		FetchedAt: now,
	}

	bars, err := p.client.GetEOD(ctx, symbol, eodhd.WithSince(now.AddDate(-p.historyYears, 0, 0)))
	if err != nil {
		p.logger.Warn().Err(err).Str("ticker", ticker).Msg("EODHD price history unavailable")
	} else {
		payload.History = pricePoints(bars)
		payload.Prices = tail(payload.History, recentCloses)
	}

	divs, err := p.client.GetDividends(ctx, symbol)
	if err != nil {
		p.logger.Warn().Err(err).Str("ticker", ticker).Msg("EODHD dividends unavailable")
	} else {
		payload.Dividends = dividendEvents(divs)
	}

	return payload, nil
}

// Profile returns the descriptive fields of the fundamentals document.
func (p *EODHDProvider) Profile(ctx context.Context, ticker string) (map[string]any, error) {
	symbol := common.ParseTicker(ticker).EODHDSymbol()

	doc, err := p.client.GetFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("eodhd profile for %s: %w", symbol, err)
	}

	info := infoFromFundamentals(doc)
	profile := make(map[string]any, len(profileKeys))
	for _, key := range profileKeys {
		if v, ok := info[key]; ok {
			profile[key] = v
		}
	}
	return profile, nil
}

func infoFromFundamentals(doc eodhd.Fundamentals) map[string]any {
	var root any = map[string]any(doc)

	info := make(map[string]any, len(fundamentalsPaths)+1)
	for key, path := range fundamentalsPaths {
		v, err := jsonpath.Get(path, root)
		if err != nil || v == nil {
			continue
		}
		// jsonpath may wrap a single answer in a list
		if list, ok := v.([]any); ok {
			if len(list) == 0 {
				continue
			}
			v = list[0]
		}
		info[key] = v
	}

	if de, ok := debtToEquity(doc); ok {
		info[models.InfoDebtToEquity] = de
	}
	return info
}

// debtToEquity computes total liabilities over shareholder equity, in percent,
// from the most recent quarterly balance sheet.
func debtToEquity(doc eodhd.Fundamentals) (float64, bool) {
	raw, err := jsonpath.Get("$.Financials.Balance_Sheet.quarterly", map[string]any(doc))
	if err != nil {
		return 0, false
	}
	quarters, ok := raw.(map[string]any)
	if !ok || len(quarters) == 0 {
		return 0, false
	}

	dates := make([]string, 0, len(quarters))
	for d := range quarters {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	latest, ok := quarters[dates[len(dates)-1]].(map[string]any)
	if !ok {
		return 0, false
	}
	liab, ok1 := number(latest["totalLiab"])
	equity, ok2 := number(latest["totalStockholderEquity"])
	if !ok1 || !ok2 || equity == 0 {
		return 0, false
	}
	return liab / equity * 100, true
}

// number reads EODHD numeric fields, which arrive as numbers or numeric strings.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func pricePoints(bars eodhd.EODResponse) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		if bar.Date.IsZero() || bar.Close <= 0 {
			continue
		}
		points = append(points, models.PricePoint{Date: bar.Date, Close: bar.Close})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

func dividendEvents(divs eodhd.DividendsResponse) []models.DividendEvent {
	events := make([]models.DividendEvent, 0, len(divs))
	for _, d := range divs {
		if d.Date.IsZero() {
			continue
		}
		events = append(events, models.DividendEvent{Date: d.Date, Amount: d.Value})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

func tail(points []models.PricePoint, n int) []models.PricePoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
