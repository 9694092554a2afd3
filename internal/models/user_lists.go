package models

import "fmt"

// Schema versions of the user documents. Version 0 is the legacy layout.
const (
	WatchlistSchemaVersion = 1
	PortfolioSchemaVersion = 1
)

// DefaultWatchlist is used when no watchlist document exists yet.
var DefaultWatchlist = []string{"ITUB4.SA", "PETR4.SA", "VALE3.SA", "BBDC4.SA", "ABEV3.SA"}

// Watchlist is the ordered set of tickers the user follows.
type Watchlist struct {
	SchemaVersion int      `json:"schema_version" validate:"eq=1"`
	Items         []string `json:"items" validate:"dive,b3ticker"`
}

// Validate checks the watchlist against its schema.
func (w *Watchlist) Validate() error {
	if err := Validator().Struct(w); err != nil {
		return fmt.Errorf("watchlist validation failed: %w", err)
	}
	return nil
}

// Portfolio maps tickers to held quantities.
type Portfolio struct {
	SchemaVersion int                `json:"schema_version" validate:"eq=1"`
	Holdings      map[string]float64 `json:"holdings" validate:"dive,keys,b3ticker,endkeys,gt=0"`
}

// Validate checks the portfolio against its schema.
func (p *Portfolio) Validate() error {
	if err := Validator().Struct(p); err != nil {
		return fmt.Errorf("portfolio validation failed: %w", err)
	}
	return nil
}
