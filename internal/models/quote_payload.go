package models

import "time"

// Info blob keys. Providers translate their native fields into these names so the
// metric extractor reads a single flat vocabulary.
const (
	InfoLongName           = "longName"
	InfoShortName          = "shortName"
	InfoCurrentPrice       = "currentPrice"
	InfoRegularMarketPrice = "regularMarketPrice"
	InfoDividendYield      = "dividendYield" // fraction, 0.08 = 8%
	InfoTrailingPE         = "trailingPE"
	InfoForwardPE          = "forwardPE"
	InfoPriceToBook        = "priceToBook"
	InfoReturnOnEquity     = "returnOnEquity" // fraction
	InfoDebtToEquity       = "debtToEquity"
	InfoProfitMargins      = "profitMargins" // fraction
	InfoMarketCap          = "marketCap"
	InfoSector             = "sector"
	InfoIndustry           = "industry"
	InfoCurrency           = "currency"
	InfoExchange           = "exchange"
	InfoCountry            = "country"
	InfoISIN               = "isin"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// DividendEvent is one cash dividend per share.
type DividendEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// QuotePayload is the raw provider response for one ticker.
type QuotePayload struct {
	Ticker string `json:"ticker"`
	Source string `json:"source"`

	// Prices holds the most recent closes in chronological order.
	Prices []PricePoint `json:"prices"`
	// History holds up to five years of daily closes in chronological order.
	History []PricePoint `json:"history"`
	// Dividends holds dividend events in chronological order.
	Dividends []DividendEvent `json:"dividends"`
	// Info is a flat key/value map using the Info* keys.
	Info map[string]any `json:"info"`

	FetchedAt time.Time `json:"fetched_at"`
}
