// Package stockdata assembles scored StockRows for a list of tickers.
//
// Per ticker the manager consults the row cache, and on a miss fetches the
// provider payload, extracts the metrics, scores the row and caches it. A failed
// ticker becomes an all-unavailable row; it never aborts the batch.
package stockdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/cache"
	"github.com/ternarybob/barsi/internal/services/metrics"
	"github.com/ternarybob/barsi/internal/services/rating"
	"github.com/ternarybob/barsi/internal/worker"
)

// Manager is the stock data manager.
type Manager struct {
	provider  interfaces.QuoteProvider
	cache     *cache.Service
	extractor *metrics.Extractor
	pool      *worker.Pool
	logger    arbor.ILogger
	now       func() time.Time
}

// NewManager creates a manager. workers bounds the number of concurrent fetches;
// 1 fetches sequentially.
func NewManager(provider interfaces.QuoteProvider, rowCache *cache.Service, extractor *metrics.Extractor, workers int, logger arbor.ILogger) *Manager {
	return &Manager{
		provider:  provider,
		cache:     rowCache,
		extractor: extractor,
		pool:      worker.NewPool(workers, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// FetchRows returns one row per input ticker in input order. Duplicates are kept.
func (m *Manager) FetchRows(ctx context.Context, tickers []string) []models.StockRow {
	return m.rows(ctx, tickers, true)
}

// RefreshRows refetches every ticker, ignoring cached rows, and caches the results.
func (m *Manager) RefreshRows(ctx context.Context, tickers []string) []models.StockRow {
	return m.rows(ctx, tickers, false)
}

func (m *Manager) rows(ctx context.Context, tickers []string, useCache bool) []models.StockRow {
	rows := make([]models.StockRow, len(tickers))
	if len(tickers) == 0 {
		return rows
	}

	start := time.Now()
	done := make([]bool, len(tickers))

	m.pool.Run(ctx, len(tickers), func(ctx context.Context, i int) {
		rows[i] = m.row(ctx, tickers[i], useCache)
		done[i] = true
	})

	// Tickers skipped after cancellation still get a row.
	skipped := 0
	for i := range rows {
		if !done[i] {
			rows[i] = m.unavailable(common.NormalizeTicker(tickers[i]), fmt.Errorf("fetch skipped: %w", context.Cause(ctx)))
			skipped++
		}
	}

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}

	m.logger.Debug().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Int("skipped", skipped).
		Bool("cached_reads", useCache).
		Str("duration", time.Since(start).String()).
		Msg("Stock rows assembled")

	return rows
}

func (m *Manager) row(ctx context.Context, input string, useCache bool) models.StockRow {
	ticker, err := common.ValidateTicker(input)
	if err != nil {
		m.logger.Warn().Str("ticker", input).Err(err).Msg("Skipping invalid ticker")
		return m.unavailable(common.NormalizeTicker(input), err)
	}

	if useCache {
		if row, ok := m.cache.Get(ticker); ok {
			m.logger.Trace().Str("ticker", ticker).Msg("Row cache hit")
			return row
		}
	}

	var row models.StockRow
	err = common.SafeCall(m.logger, "fetch "+ticker, func() error {
		payload, err := m.provider.Fetch(ctx, ticker)
		if err != nil {
			return err
		}
		if payload == nil {
			return errors.New("provider returned no payload")
		}
		row = m.extractor.Extract(ticker, payload)
		row.Score = rating.ScoreRow(row)
		return nil
	})
	if err != nil {
		m.logger.Warn().
			Str("ticker", ticker).
			Str("provider", m.provider.Name()).
			Err(err).
			Msg("Stock fetch failed, returning unavailable row")
		return m.unavailable(ticker, err)
	}

	m.cache.Put(ticker, row)
	return row
}

func (m *Manager) unavailable(ticker string, cause error) models.StockRow {
	score := rating.Score(rating.Inputs{
		DividendPerShareTTM: models.Unavailable(models.ReasonFetchFailed),
		PERatio:             models.Unavailable(models.ReasonFetchFailed),
		ROEPct:              models.Unavailable(models.ReasonFetchFailed),
		MarketCap:           models.Unavailable(models.ReasonFetchFailed),
	})
	return models.UnavailableRow(ticker, score, cause, m.now())
}
