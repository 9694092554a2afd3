package quotes

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

// ProviderYahoo identifies the Yahoo Finance provider.
const ProviderYahoo = "yahoo"

type (
	equityFunc func(symbol string) (*finance.Equity, error)
	chartFunc  func(params *chart.Params) ([]finance.ChartBar, error)
)

// YahooProvider fetches quotes and price history from Yahoo Finance.
// The quote endpoint carries no dividend events or profitability ratios, so those
// fields stay unavailable on rows built from this provider alone.
type YahooProvider struct {
	logger       arbor.ILogger
	historyYears int
	now          func() time.Time
	getEquity    equityFunc
	getChart     chartFunc
}

var _ interfaces.QuoteProvider = (*YahooProvider)(nil)

// NewYahooProvider creates a new Yahoo Finance quote provider.
func NewYahooProvider(logger arbor.ILogger, historyYears int) *YahooProvider {
	if historyYears < 1 {
		historyYears = 5
	}
	return &YahooProvider{
		logger:       logger,
		historyYears: historyYears,
		now:          time.Now,
		getEquity:    equity.Get,
		getChart:     chartBars,
	}
}

// Name returns the provider name.
func (p *YahooProvider) Name() string {
	return ProviderYahoo
}

// Fetch retrieves the quote and daily closes for one ticker.
func (p *YahooProvider) Fetch(ctx context.Context, ticker string) (*models.QuotePayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol := common.ParseTicker(ticker).YahooSymbol()
	now := p.now()

	q, err := p.getEquity(symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("yahoo quote for %s: no data", symbol)
	}

	payload := &models.QuotePayload{
		Ticker:    ticker,
		Source:    ProviderYahoo,
		Info:      infoFromEquity(q),
		FetchedAt: now,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := now.AddDate(-p.historyYears, 0, 0)
	bars, err := p.getChart(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Interval: datetime.OneDay,
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("ticker", ticker).Msg("Yahoo price history unavailable")
	} else {
		payload.History = barsToPoints(bars)
		payload.Prices = tail(payload.History, recentCloses)
	}

	return payload, nil
}

// Profile returns the descriptive fields of the quote.
func (p *YahooProvider) Profile(ctx context.Context, ticker string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol := common.ParseTicker(ticker).YahooSymbol()

	q, err := p.getEquity(symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo profile for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("yahoo profile for %s: no data", symbol)
	}

	info := infoFromEquity(q)
	profile := make(map[string]any, len(profileKeys))
	for _, key := range profileKeys {
		if v, ok := info[key]; ok {
			profile[key] = v
		}
	}
	return profile, nil
}

func infoFromEquity(q *finance.Equity) map[string]any {
	info := map[string]any{
		models.InfoCurrentPrice:       q.RegularMarketPrice,
		models.InfoRegularMarketPrice: q.RegularMarketPrice,
		models.InfoDividendYield:      q.TrailingAnnualDividendYield,
		models.InfoTrailingPE:         q.TrailingPE,
		models.InfoForwardPE:          q.ForwardPE,
		models.InfoPriceToBook:        q.PriceToBook,
		models.InfoMarketCap:          q.MarketCap,
	}
	setText(info, models.InfoLongName, q.LongName)
	setText(info, models.InfoShortName, q.ShortName)
	setText(info, models.InfoCurrency, q.CurrencyID)
	setText(info, models.InfoExchange, q.FullExchangeName)
	return info
}

func setText(info map[string]any, key, value string) {
	if value != "" {
		info[key] = value
	}
}

func chartBars(params *chart.Params) ([]finance.ChartBar, error) {
	iter := chart.Get(params)
	var bars []finance.ChartBar
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

func barsToPoints(bars []finance.ChartBar) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		closePrice := bar.Close.InexactFloat64()
		if closePrice <= 0 {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Close: closePrice,
		})
	}
	return points
}
