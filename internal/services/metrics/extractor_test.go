package metrics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/barsi/internal/models"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func TestPriceChangePct(t *testing.T) {
	tests := []struct {
		name   string
		prices []models.PricePoint
		want   float64
		wantOK bool
	}{
		{"ten percent up", []models.PricePoint{{Date: day(-1), Close: 10}, {Date: day(0), Close: 11}}, 10, true},
		{"down", []models.PricePoint{{Close: 20}, {Close: 15}}, -25, true},
		{"single point", []models.PricePoint{{Close: 10}}, 0, false},
		{"empty", nil, 0, false},
		{"zero previous", []models.PricePoint{{Close: 0}, {Close: 5}}, 0, false},
		{"uses last two", []models.PricePoint{{Close: 1}, {Close: 50}, {Close: 55}}, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriceChangePct(tt.prices).Get()
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCurrentPrice(t *testing.T) {
	series := []models.PricePoint{{Close: 30.5}, {Close: 31.25}}

	got, ok := CurrentPrice(series, nil).Get()
	require.True(t, ok)
	assert.Equal(t, 31.25, got)

	got, ok = CurrentPrice(nil, map[string]any{models.InfoCurrentPrice: 12.0}).Get()
	require.True(t, ok)
	assert.Equal(t, 12.0, got)

	got, ok = CurrentPrice(nil, map[string]any{models.InfoCurrentPrice: 0, models.InfoRegularMarketPrice: "9.5"}).Get()
	require.True(t, ok)
	assert.Equal(t, 9.5, got)

	assert.False(t, CurrentPrice(nil, map[string]any{}).Available())
}

func TestInfoPassthroughs(t *testing.T) {
	info := map[string]any{
		models.InfoDividendYield:  0.085,
		models.InfoTrailingPE:     nil,
		models.InfoForwardPE:      json.Number("7.5"),
		models.InfoPriceToBook:    1.2,
		models.InfoReturnOnEquity: 0.21,
		models.InfoDebtToEquity:   "bogus",
		models.InfoProfitMargins:  0,
		models.InfoMarketCap:      int64(450_000_000_000),
	}

	dy, ok := CurrentDividendYieldPct(info).Get()
	require.True(t, ok)
	assert.InDelta(t, 8.5, dy, 1e-9)

	pe, ok := PERatio(info).Get()
	require.True(t, ok, "forward P/E should fill in for a null trailing P/E")
	assert.Equal(t, 7.5, pe)

	e := NewExtractor(WithClock(func() time.Time { return testNow }))
	row := e.Extract("PETR4.SA", &models.QuotePayload{Info: info})

	assert.Equal(t, 1.2, row.PBRatio.Float())
	assert.InDelta(t, 21.0, row.ROEPct.Float(), 1e-9)
	assert.False(t, row.DebtToEquity.Available())
	assert.Equal(t, models.ReasonNotNumeric, row.DebtToEquity.Reason())
	assert.False(t, row.NetMarginPct.Available())
	assert.Equal(t, models.ReasonZero, row.NetMarginPct.Reason())
	assert.Equal(t, 450e9, row.MarketCap.Float())
}

func TestField_NonFinite(t *testing.T) {
	v := field(map[string]any{"x": math.NaN()}, "x")
	assert.False(t, v.Available())
	assert.Equal(t, models.ReasonNotFinite, v.Reason())

	v = field(map[string]any{"x": []int{1}}, "x")
	assert.Equal(t, models.ReasonNotNumeric, v.Reason())
}

func TestDividendPerShareTTM(t *testing.T) {
	events := []models.DividendEvent{
		{Date: day(-400), Amount: 5},
		{Date: day(-200), Amount: 1.5},
		{Date: day(-10), Amount: 0.5},
	}

	got, ok := DividendPerShareTTM(events, testNow).Get()
	require.True(t, ok)
	assert.InDelta(t, 2.0, got, 1e-9)

	got, ok = DividendPerShareTTM(events[:1], testNow).Get()
	require.True(t, ok, "an old history still yields a real zero")
	assert.Equal(t, 0.0, got)

	assert.False(t, DividendPerShareTTM(nil, testNow).Available())
}

func TestAvgDividendYield5yPct(t *testing.T) {
	dividends := []models.DividendEvent{
		{Date: time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), Amount: 100}, // outside the window
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: 1},
		{Date: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), Amount: 1},
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Amount: 4},
	}
	history := []models.PricePoint{
		{Date: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), Close: 1000},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 20},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: 40},
	}

	// yearly sums 2 and 4, mean 3; mean price 30; 3/30*100 = 10
	got, ok := AvgDividendYield5yPct(dividends, history, testNow).Get()
	require.True(t, ok)
	assert.InDelta(t, 10.0, got, 1e-9)

	assert.False(t, AvgDividendYield5yPct(nil, history, testNow).Available())
	assert.False(t, AvgDividendYield5yPct(dividends, nil, testNow).Available())
	assert.False(t, AvgDividendYield5yPct(dividends[:1], history, testNow).Available())
}

func TestAvgDividendYield5yPct_Deterministic(t *testing.T) {
	var dividends []models.DividendEvent
	for i, amount := range []float64{0.1, 0.7, 1e-9, 0.3, 1e9, 0.2} {
		dividends = append(dividends, models.DividendEvent{
			Date:   time.Date(2021+i, 7, 1, 0, 0, 0, 0, time.UTC),
			Amount: amount,
		})
	}
	history := []models.PricePoint{{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: 3}}

	first := AvgDividendYield5yPct(dividends, history, testNow)
	require.True(t, first.Available())
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, AvgDividendYield5yPct(dividends, history, testNow))
	}
}

func TestExtract_FullRow(t *testing.T) {
	e := NewExtractor(WithClock(func() time.Time { return testNow }))
	payload := &models.QuotePayload{
		Source:  "test",
		Prices:  []models.PricePoint{{Date: day(-1), Close: 10}, {Date: day(0), Close: 11}},
		History: []models.PricePoint{{Date: day(-300), Close: 10}, {Date: day(0), Close: 11}},
		Dividends: []models.DividendEvent{
			{Date: day(-30), Amount: 0.7},
		},
		Info: map[string]any{
			models.InfoLongName:       "Petróleo Brasileiro S.A. - Petrobras",
			models.InfoSector:         "Energy",
			models.InfoTrailingPE:     4.1,
			models.InfoReturnOnEquity: 0.3,
			models.InfoMarketCap:      5e11,
		},
	}

	row := e.Extract("PETR4.SA", payload)

	assert.Equal(t, "PETR4.SA", row.Ticker)
	assert.Equal(t, "Petróleo Brasileiro S.A. - Petrobras", row.Name)
	assert.Equal(t, "Energy", row.Sector)
	assert.Equal(t, "BRL", row.Currency)
	assert.Equal(t, "test", row.Source)
	assert.Equal(t, 11.0, row.CurrentPrice.Float())
	assert.InDelta(t, 10.0, row.PriceChangePct.Float(), 1e-9)
	assert.True(t, row.PaysDividends)
	assert.Equal(t, 0.7, row.DividendPerShareTTM.Float())
	assert.False(t, row.CurrentDividendYieldPct.Available())
	assert.Equal(t, testNow, row.FetchedAt)
}

func TestExtract_EmptyPayloadIsolatesFields(t *testing.T) {
	row := NewExtractor().Extract("VALE3.SA", nil)

	assert.Equal(t, "VALE3", row.Name)
	assert.Empty(t, row.Sector)
	for name, v := range map[string]models.Value{
		"price":  row.CurrentPrice,
		"change": row.PriceChangePct,
		"dy":     row.CurrentDividendYieldPct,
		"dy5y":   row.AvgDividendYield5yPct,
		"dps":    row.DividendPerShareTTM,
		"pe":     row.PERatio,
		"pb":     row.PBRatio,
		"roe":    row.ROEPct,
		"de":     row.DebtToEquity,
		"margin": row.NetMarginPct,
		"cap":    row.MarketCap,
	} {
		assert.False(t, v.Available(), name)
	}
	assert.False(t, row.PaysDividends)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Vale", Name("VALE3.SA", map[string]any{models.InfoShortName: "Vale"}))
	assert.Equal(t, "VALE3", Name("VALE3.SA", map[string]any{models.InfoLongName: "N/A"}))
	assert.Equal(t, "VALE3", Name("VALE3.SA", map[string]any{models.InfoLongName: 42}))
}
