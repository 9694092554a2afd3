// Package lists persists the user's watchlist and portfolio documents.
package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

var (
	// ErrInvalidTicker is returned for input that is not a B3 ticker.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrInvalidQuantity is returned for negative or non-finite quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// legacyWatchlist is the {watched_stocks, last_updated} layout of earlier releases.
type legacyWatchlist struct {
	WatchedStocks []string `json:"watched_stocks"`
}

// Watchlist is the ordered, de-duplicated list of followed tickers.
type Watchlist struct {
	store    interfaces.DocumentStore
	defaults []string
	logger   arbor.ILogger

	mu    sync.RWMutex
	items []string
}

// NewWatchlist creates a watchlist. defaults is served until the first save;
// nil uses models.DefaultWatchlist.
func NewWatchlist(store interfaces.DocumentStore, defaults []string, logger arbor.ILogger) *Watchlist {
	if defaults == nil {
		defaults = models.DefaultWatchlist
	}
	return &Watchlist{
		store:    store,
		defaults: normalizeAll(defaults),
		logger:   logger,
	}
}

// Load reads the watchlist document. A missing or unreadable document yields the defaults.
func (w *Watchlist) Load(ctx context.Context) ([]string, error) {
	data, err := w.store.Load(ctx, interfaces.DocumentWatchlist)
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		w.set(w.defaults)
		return w.Items(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	items, migrated, err := decodeWatchlist(data)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Unreadable watchlist, using defaults")
		w.set(w.defaults)
		return w.Items(), nil
	}
	w.set(items)

	if migrated {
		w.logger.Info().Int("items", len(items)).Msg("Migrated legacy watchlist")
		if err := w.Save(ctx); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to save migrated watchlist")
		}
	}
	return w.Items(), nil
}

// Save persists the current items.
func (w *Watchlist) Save(ctx context.Context) error {
	doc := models.Watchlist{
		SchemaVersion: models.WatchlistSchemaVersion,
		Items:         w.Items(),
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := w.store.Save(ctx, interfaces.DocumentWatchlist, data); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}

// Add appends ticker and saves. It reports false when the ticker was already present.
func (w *Watchlist) Add(ctx context.Context, ticker string) (bool, error) {
	normalized, err := common.ValidateTicker(ticker)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTicker, err)
	}

	w.mu.Lock()
	if slices.Contains(w.items, normalized) {
		w.mu.Unlock()
		return false, nil
	}
	w.items = append(w.items, normalized)
	w.mu.Unlock()

	return true, w.Save(ctx)
}

// Remove deletes ticker and saves. It reports false when the ticker was absent.
func (w *Watchlist) Remove(ctx context.Context, ticker string) (bool, error) {
	normalized := common.NormalizeTicker(ticker)

	w.mu.Lock()
	i := slices.Index(w.items, normalized)
	if i < 0 {
		w.mu.Unlock()
		return false, nil
	}
	w.items = slices.Delete(w.items, i, i+1)
	w.mu.Unlock()

	return true, w.Save(ctx)
}

// Items returns a copy of the watched tickers in insertion order.
func (w *Watchlist) Items() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.items)
}

func (w *Watchlist) set(items []string) {
	w.mu.Lock()
	w.items = slices.Clone(items)
	w.mu.Unlock()
}

func decodeWatchlist(data []byte) ([]string, bool, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, false, fmt.Errorf("failed to decode watchlist: %w", err)
	}

	if _, ok := keys["items"]; !ok {
		if _, legacy := keys["watched_stocks"]; legacy {
			var old legacyWatchlist
			if err := json.Unmarshal(data, &old); err != nil {
				return nil, false, fmt.Errorf("failed to decode legacy watchlist: %w", err)
			}
			return normalizeAll(old.WatchedStocks), true, nil
		}
	}

	var doc models.Watchlist
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode watchlist: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, false, err
	}
	return normalizeAll(doc.Items), false, nil
}

// normalizeAll validates and de-duplicates tickers, keeping first occurrences.
func normalizeAll(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		normalized, err := common.ValidateTicker(t)
		if err != nil || slices.Contains(out, normalized) {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
