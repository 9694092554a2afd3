package eodhd

import (
	"time"
)

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// DividendData represents dividend information.
type DividendData struct {
	Date            time.Time `json:"-"`
	DateStr         string    `json:"date"`
	PaymentDate     string    `json:"paymentDate"`
	Value           float64   `json:"value"`
	UnadjustedValue float64   `json:"unadjustedValue"`
	Currency        string    `json:"currency"`
}

// DividendsResponse is a slice of DividendData.
type DividendsResponse []DividendData

// Fundamentals is the raw fundamentals document (General, Highlights, Valuation, Financials, ...).
type Fundamentals map[string]any

// ExchangeSymbol is one entry of the exchange symbol list.
type ExchangeSymbol struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Country  string `json:"Country"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"` // "Common Stock", "Preferred Stock", "FUND", "ETF", ...
	Isin     string `json:"Isin"`
}

// ExchangeSymbolsResponse is a slice of ExchangeSymbol.
type ExchangeSymbolsResponse []ExchangeSymbol

// IsEquity reports whether the symbol is a common or preferred share.
func (s ExchangeSymbol) IsEquity() bool {
	switch s.Type {
	case "Common Stock", "Preferred Stock":
		return true
	}
	return false
}
