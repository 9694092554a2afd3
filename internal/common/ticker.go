// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"strings"

	"github.com/ternarybob/barsi/internal/models"
)

// B3Suffix is the exchange suffix used for B3 (São Paulo) listings by both
// Yahoo and EODHD.
const B3Suffix = ".SA"

// exchangePrefixes are accepted in "EXCHANGE:CODE" input and mapped to B3.
var exchangePrefixes = map[string]bool{
	"B3":      true,
	"BVMF":    true,
	"BOVESPA": true,
	"SA":      true,
}

// Ticker is a parsed B3 ticker.
type Ticker struct {
	// Code is the listing code (e.g., "PETR4", "TAEE11")
	Code string
	// Raw is the original input
	Raw string
}

// ParseTicker parses a ticker string.
// Supports formats:
//   - "PETR4.SA" -> Code="PETR4"
//   - "petr4"    -> Code="PETR4" (normalized to uppercase, suffix implied)
//   - "B3:PETR4" -> Code="PETR4" (exchange prefix)
func ParseTicker(ticker string) Ticker {
	raw := ticker
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.Index(ticker, ":"); idx > 0 {
		if exchangePrefixes[ticker[:idx]] {
			ticker = ticker[idx+1:]
		}
	}

	ticker = strings.TrimSuffix(ticker, B3Suffix)

	return Ticker{
		Code: ticker,
		Raw:  raw,
	}
}

// String returns the suffixed ticker ("PETR4.SA").
func (t Ticker) String() string {
	if t.Code == "" {
		return ""
	}
	return t.Code + B3Suffix
}

// EODHDSymbol returns the EODHD API symbol ("PETR4.SA").
func (t Ticker) EODHDSymbol() string {
	return t.String()
}

// YahooSymbol returns the Yahoo Finance symbol ("PETR4.SA").
func (t Ticker) YahooSymbol() string {
	return t.String()
}

// Valid reports whether the ticker has the B3 shape: a 4 to 6 character code
// whose first four characters are letters.
func (t Ticker) Valid() bool {
	return models.IsB3Ticker(t.String())
}

// NormalizeTicker uppercases, trims and suffixes a ticker ("petr4" -> "PETR4.SA").
func NormalizeTicker(ticker string) string {
	return ParseTicker(ticker).String()
}

// ValidateTicker normalizes the ticker and checks its shape.
func ValidateTicker(ticker string) (string, error) {
	parsed := ParseTicker(ticker)
	if parsed.Code == "" {
		return "", fmt.Errorf("empty ticker")
	}
	if !parsed.Valid() {
		return "", fmt.Errorf("invalid B3 ticker %q: expected 4 letters and up to 2 characters, e.g. PETR4.SA", ticker)
	}
	return parsed.String(), nil
}

// ParseTickers normalizes a list of tickers, dropping empty entries. Order and
// duplicates are preserved.
func ParseTickers(tickers []string) []string {
	result := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if n := NormalizeTicker(t); n != "" {
			result = append(result, n)
		}
	}
	return result
}
