package models

import (
	"strconv"
	"strings"
	"time"
)

// Tier is the qualitative label derived from the criteria ratio.
type Tier string

const (
	TierExcellent   Tier = "Excellent"
	TierGood        Tier = "Good"
	TierDoesNotMeet Tier = "Does not meet"
)

// CriteriaCount is the fixed number of Barsi/BESST criteria.
const CriteriaCount = 4

// CriteriaScore is the outcome of the Barsi/BESST rule.
type CriteriaScore struct {
	Met       int                 `json:"met"`
	Total     int                 `json:"total"`
	Tier      Tier                `json:"tier"`
	Criteria  [CriteriaCount]bool `json:"criteria"`
	Reasoning string              `json:"reasoning,omitempty"`
}

// Ratio returns Met/Total, or 0 for an empty score.
func (s CriteriaScore) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Met) / float64(s.Total)
}

// Label renders the score as "3/4 Good".
func (s CriteriaScore) Label() string {
	return strconv.Itoa(s.Met) + "/" + strconv.Itoa(s.Total) + " " + string(s.Tier)
}

// StockRow is one computed snapshot for a ticker. Rows are never mutated after
// they are returned; a refresh produces a new row.
type StockRow struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`

	CurrentPrice   Value `json:"current_price"`
	PriceChangePct Value `json:"price_change_pct"`

	CurrentDividendYieldPct Value `json:"current_dividend_yield_pct"`
	AvgDividendYield5yPct   Value `json:"avg_dividend_yield_5y_pct"`
	DividendPerShareTTM     Value `json:"dividend_per_share_ttm"`
	PaysDividends           bool  `json:"pays_dividends"`

	PERatio      Value `json:"pe_ratio"`
	PBRatio      Value `json:"pb_ratio"`
	ROEPct       Value `json:"roe_pct"`
	DebtToEquity Value `json:"debt_to_equity"`
	NetMarginPct Value `json:"net_margin_pct"`
	MarketCap    Value `json:"market_cap"`

	Score CriteriaScore `json:"criteria_score"`

	Currency  string    `json:"currency,omitempty"`
	Source    string    `json:"source,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Error     string    `json:"error,omitempty"`
}

// UnavailableRow builds the row emitted when a ticker could not be fetched.
// Only the ticker identity survives; every metric is unavailable.
func UnavailableRow(ticker string, score CriteriaScore, cause error, at time.Time) StockRow {
	na := Unavailable(ReasonFetchFailed)
	row := StockRow{
		Ticker:                  ticker,
		CurrentPrice:            na,
		PriceChangePct:          na,
		CurrentDividendYieldPct: na,
		AvgDividendYield5yPct:   na,
		DividendPerShareTTM:     na,
		PERatio:                 na,
		PBRatio:                 na,
		ROEPct:                  na,
		DebtToEquity:            na,
		NetMarginPct:            na,
		MarketCap:               na,
		Score:                   score,
		FetchedAt:               at,
	}
	if cause != nil {
		row.Error = cause.Error()
	}
	return row
}

// TickerCode strips the exchange suffix ("PETR4.SA" -> "PETR4").
func TickerCode(ticker string) string {
	if idx := strings.LastIndex(ticker, "."); idx > 0 {
		return ticker[:idx]
	}
	return ticker
}
