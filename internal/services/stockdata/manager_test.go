package stockdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"go.uber.org/mock/gomock"

	"github.com/ternarybob/barsi/internal/interfaces/mocks"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/cache"
	"github.com/ternarybob/barsi/internal/services/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)}
}

// barsiPayload yields a row meeting all four criteria.
func barsiPayload(ticker string, at time.Time) *models.QuotePayload {
	return &models.QuotePayload{
		Ticker: ticker,
		Source: "mock",
		Prices: []models.PricePoint{{Date: at.AddDate(0, 0, -1), Close: 10}, {Date: at, Close: 10.5}},
		Dividends: []models.DividendEvent{
			{Date: at.AddDate(0, -2, 0), Amount: 0.9},
		},
		Info: map[string]any{
			models.InfoLongName:       ticker + " S.A.",
			models.InfoTrailingPE:     6.0,
			models.InfoReturnOnEquity: 0.2,
			models.InfoMarketCap:      5e10,
		},
		FetchedAt: at,
	}
}

func newManager(t *testing.T, clock *fakeClock, workers int) (*Manager, *mocks.MockQuoteProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()

	rowCache := cache.NewService(cache.WithClock(clock.Now))
	extractor := metrics.NewExtractor(metrics.WithClock(clock.Now))
	m := NewManager(provider, rowCache, extractor, workers, arbor.NewLogger())
	m.now = clock.Now
	return m, provider
}

func TestFetchRows_OrderAndIsolation(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(barsiPayload("PETR4.SA", clock.Now()), nil)
	provider.EXPECT().Fetch(gomock.Any(), "VALE3.SA").Return(nil, errors.New("connection reset"))
	provider.EXPECT().Fetch(gomock.Any(), "ITUB4.SA").Return(barsiPayload("ITUB4.SA", clock.Now()), nil)

	rows := m.FetchRows(context.Background(), []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA"})
	require.Len(t, rows, 3)

	assert.Equal(t, "PETR4.SA", rows[0].Ticker)
	assert.Equal(t, models.TierExcellent, rows[0].Score.Tier)
	assert.Equal(t, 4, rows[0].Score.Met)
	assert.Empty(t, rows[0].Error)

	assert.Equal(t, "VALE3.SA", rows[1].Ticker)
	assert.Contains(t, rows[1].Error, "connection reset")
	assert.False(t, rows[1].CurrentPrice.Available())
	assert.Equal(t, 0, rows[1].Score.Met)
	assert.Equal(t, models.CriteriaCount, rows[1].Score.Total)
	assert.Equal(t, models.TierDoesNotMeet, rows[1].Score.Tier)

	assert.Equal(t, "ITUB4.SA", rows[2].Ticker)
	assert.Equal(t, models.TierExcellent, rows[2].Score.Tier)
}

func TestFetchRows_CacheWithinTTL(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(barsiPayload("PETR4.SA", clock.Now()), nil).Times(1)

	first := m.FetchRows(context.Background(), []string{"PETR4.SA"})
	clock.Advance(29 * time.Second)
	second := m.FetchRows(context.Background(), []string{"PETR4.SA"})

	assert.Equal(t, first, second)
}

func TestFetchRows_RefetchAfterTTL(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(barsiPayload("PETR4.SA", clock.Now()), nil).Times(2)

	m.FetchRows(context.Background(), []string{"PETR4.SA"})
	clock.Advance(30 * time.Second)
	m.FetchRows(context.Background(), []string{"PETR4.SA"})
}

func TestFetchRows_DuplicatesKept(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	// The second occurrence is served by the cache.
	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(barsiPayload("PETR4.SA", clock.Now()), nil).Times(1)

	rows := m.FetchRows(context.Background(), []string{"PETR4.SA", "PETR4.SA"})
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0], rows[1])
}

func TestFetchRows_FailuresAreNotCached(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	gomock.InOrder(
		provider.EXPECT().Fetch(gomock.Any(), "VALE3.SA").Return(nil, errors.New("timeout")),
		provider.EXPECT().Fetch(gomock.Any(), "VALE3.SA").Return(barsiPayload("VALE3.SA", clock.Now()), nil),
	)

	rows := m.FetchRows(context.Background(), []string{"VALE3.SA"})
	assert.NotEmpty(t, rows[0].Error)

	rows = m.FetchRows(context.Background(), []string{"VALE3.SA"})
	assert.Empty(t, rows[0].Error)
}

func TestFetchRows_PanicIsIsolated(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "BBDC4.SA").DoAndReturn(func(context.Context, string) (*models.QuotePayload, error) {
		panic("decoder blew up")
	})
	provider.EXPECT().Fetch(gomock.Any(), "ABEV3.SA").Return(barsiPayload("ABEV3.SA", clock.Now()), nil)

	rows := m.FetchRows(context.Background(), []string{"BBDC4.SA", "ABEV3.SA"})
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0].Error, "decoder blew up")
	assert.Empty(t, rows[1].Error)
}

func TestFetchRows_NilPayload(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(nil, nil)

	rows := m.FetchRows(context.Background(), []string{"PETR4.SA"})
	assert.NotEmpty(t, rows[0].Error)
}

func TestFetchRows_InvalidTickerSkipsProvider(t *testing.T) {
	clock := newClock()
	m, _ := newManager(t, clock, 1)

	rows := m.FetchRows(context.Background(), []string{"??"})
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].Error)
}

func TestFetchRows_NormalizesInput(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "PETR4.SA").Return(barsiPayload("PETR4.SA", clock.Now()), nil)

	rows := m.FetchRows(context.Background(), []string{" petr4 "})
	assert.Equal(t, "PETR4.SA", rows[0].Ticker)
}

func TestFetchRows_ParallelKeepsOrder(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 4)

	tickers := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		ticker := fmt.Sprintf("TEST%d.SA", i)
		tickers = append(tickers, ticker)
		delay := time.Duration(12-i) * time.Millisecond
		payload := barsiPayload(ticker, clock.Now())
		var err error
		if i%3 == 0 {
			payload, err = nil, errors.New("boom")
		}
		provider.EXPECT().Fetch(gomock.Any(), ticker).DoAndReturn(func(context.Context, string) (*models.QuotePayload, error) {
			time.Sleep(delay)
			return payload, err
		})
	}

	rows := m.FetchRows(context.Background(), tickers)
	require.Len(t, rows, len(tickers))
	for i, row := range rows {
		assert.Equal(t, tickers[i], row.Ticker)
		assert.Equal(t, i%3 == 0, row.Error != "", "row %d", i)
	}
}

func TestRefreshRows_BypassesCache(t *testing.T) {
	clock := newClock()
	m, provider := newManager(t, clock, 1)

	provider.EXPECT().Fetch(gomock.Any(), "ITUB4.SA").Return(barsiPayload("ITUB4.SA", clock.Now()), nil).Times(2)

	m.FetchRows(context.Background(), []string{"ITUB4.SA"})
	m.RefreshRows(context.Background(), []string{"ITUB4.SA"})

	// The refreshed row is cached again.
	m.FetchRows(context.Background(), []string{"ITUB4.SA"})
}

func TestFetchRows_CancelledContextStillReturnsEveryRow(t *testing.T) {
	clock := newClock()
	m, _ := newManager(t, clock, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := m.FetchRows(ctx, []string{"PETR4.SA", "VALE3.SA"})
	require.Len(t, rows, 2)
	assert.Equal(t, "VALE3.SA", rows[1].Ticker)
	assert.Contains(t, rows[1].Error, "canceled")
}

func TestFetchRows_Empty(t *testing.T) {
	m, _ := newManager(t, newClock(), 1)
	assert.Empty(t, m.FetchRows(context.Background(), nil))
}
