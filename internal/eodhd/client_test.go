package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(100))
}

func TestGetEOD(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/PETR4.SA", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "a", r.URL.Query().Get("order"))
		w.Write([]byte(`[{"date":"2026-01-02","close":37.1,"adjusted_close":36.9},{"date":"2026-01-05","close":37.8}]`))
	})

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.GetEOD(context.Background(), "PETR4.SA", WithSince(from))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 37.8, bars[1].Close)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
}

func TestGetEOD_QueryOptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2025-01-01", q.Get("from"))
		assert.Equal(t, "2025-12-31", q.Get("to"))
		assert.Equal(t, "w", q.Get("period"))
		assert.Equal(t, "d", q.Get("order"))
		w.Write([]byte(`[]`))
	})

	_, err := client.GetEOD(context.Background(), "BBAS3.SA",
		WithDateRange(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		WithPeriod("w"),
		WithOrder("d"),
	)
	require.NoError(t, err)
}

func TestGetDividends(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/div/ITUB4.SA", r.URL.Path)
		w.Write([]byte(`[{"date":"2025-08-01","value":0.25,"currency":"BRL"}]`))
	})

	divs, err := client.GetDividends(context.Background(), "ITUB4.SA")
	require.NoError(t, err)
	require.Len(t, divs, 1)
	assert.Equal(t, 0.25, divs[0].Value)
	assert.Equal(t, 2025, divs[0].Date.Year())
}

func TestGetFundamentals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"General":{"Name":"Vale S.A.","Sector":"Basic Materials"},"Highlights":{"PERatio":6.2}}`))
	})

	doc, err := client.GetFundamentals(context.Background(), "VALE3.SA")
	require.NoError(t, err)
	general, ok := doc["General"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Vale S.A.", general["Name"])
}

func TestGetFundamentals_EmptyIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.GetFundamentals(context.Background(), "XXXX3.SA")
	assert.True(t, IsNotFound(err))
}

func TestGetExchangeSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange-symbol-list/SA", r.URL.Path)
		w.Write([]byte(`[
			{"Code":"PETR4","Name":"Petrobras","Type":"Preferred Stock","Currency":"BRL","Isin":"BRPETRACNPR6"},
			{"Code":"BOVA11","Name":"iShares Ibovespa","Type":"ETF"}
		]`))
	})

	symbols, err := client.GetExchangeSymbols(context.Background(), ExchangeSA)
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.True(t, symbols[0].IsEquity())
	assert.False(t, symbols[1].IsEquity())
}

func TestGet_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Ticker Not Found.", http.StatusNotFound)
		})
		_, err := client.GetEOD(context.Background(), "NOPE3.SA")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "/eod/NOPE3.SA", apiErr.Endpoint)
		assert.True(t, IsNotFound(err))
	})

	t.Run("rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := client.GetDividends(context.Background(), "PETR4.SA")

		var rlErr *RateLimitError
		require.True(t, errors.As(err, &rlErr))
		assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
	})

	t.Run("bad json", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})
		_, err := client.GetEOD(context.Background(), "PETR4.SA")
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("request should not be sent")
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.GetEOD(ctx, "PETR4.SA")
		assert.Error(t, err)
	})
}
