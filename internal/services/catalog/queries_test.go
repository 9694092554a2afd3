package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/barsi/internal/models"
)

func loadedBuilder(t *testing.T, entries ...models.CatalogEntry) *Builder {
	t.Helper()
	store := newMemStore()
	saveCatalog(t, store, testNow.Add(-time.Hour), entries...)
	b := newBuilder(store, nil, testOptions())
	_, err := b.Load(context.Background())
	require.NoError(t, err)
	return b
}

func sampleEntries() []models.CatalogEntry {
	itub := entry("ITUB4.SA", "Itaú Unibanco", "Financial Services")
	itub.Industry = "Banks - Regional"
	taee := entry("TAEE11.SA", "Taesa", "Energia Elétrica")
	sbsp := entry("SBSP3.SA", "Sabesp", "Saneamento")
	vivt := entry("VIVT3.SA", "Telefônica Brasil", "Telecomunicações")
	bbse := entry("BBSE3.SA", "BB Seguridade", "Seguradoras")
	petr := entry("PETR4.SA", "Petrobras", "Petróleo")
	petr.Industry = "Oil & Gas Integrated"
	unknown := entry("XPTO3.SA", "Xpto", models.PlaceholderSector)
	return []models.CatalogEntry{itub, taee, sbsp, vivt, bbse, petr, unknown}
}

func TestQueries_AllTickersSorted(t *testing.T) {
	b := loadedBuilder(t, sampleEntries()...)
	assert.Equal(t, []string{"BBSE3.SA", "ITUB4.SA", "PETR4.SA", "SBSP3.SA", "TAEE11.SA", "VIVT3.SA", "XPTO3.SA"}, b.AllTickers())
}

func TestQueries_Sectors(t *testing.T) {
	b := loadedBuilder(t,
		entry("ITUB4.SA", "Itaú", "Bancos"),
		entry("BBDC4.SA", "Bradesco", "Bancos"),
		entry("PETR4.SA", "Petrobras", "Petróleo"),
		entry("XPTO3.SA", "Xpto", "N/A"),
		entry("ABCD3.SA", "Abcd", ""),
	)
	assert.Equal(t, []string{"Bancos", "Petróleo"}, b.Sectors())
}

func TestQueries_TickersBySector(t *testing.T) {
	b := loadedBuilder(t,
		entry("ITUB4.SA", "Itaú", "Bancos"),
		entry("BBDC4.SA", "Bradesco", "Bancos"),
		entry("PETR4.SA", "Petrobras", "Petróleo"),
	)
	assert.Equal(t, []string{"BBDC4.SA", "ITUB4.SA"}, b.TickersBySector("bancos"))
	assert.Empty(t, b.TickersBySector("Banc"))
	assert.Empty(t, b.TickersBySector(""))
}

func TestQueries_Search(t *testing.T) {
	b := loadedBuilder(t, sampleEntries()...)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by code", "petr", []string{"PETR4.SA"}},
		{"by name", "sabesp", []string{"SBSP3.SA"}},
		{"by industry", "regional", []string{"ITUB4.SA"}},
		{"by suffix", ".sa", []string{"BBSE3.SA", "ITUB4.SA", "PETR4.SA", "SBSP3.SA", "TAEE11.SA", "VIVT3.SA", "XPTO3.SA"}},
		{"sector not searched", "saneamento", nil},
		{"empty", "   ", nil},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range b.Search(tt.query) {
				got = append(got, e.Ticker)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueries_SearchIgnoresPlaceholders(t *testing.T) {
	abev := entry("ABEV3.SA", "Ambev", models.PlaceholderSector)
	abev.Industry = models.PlaceholderSector
	wege := entry("WEGE3.SA", "WEG", models.PlaceholderSector)
	wege.Industry = models.PlaceholderSector
	b := loadedBuilder(t, abev, wege)

	assert.Empty(t, b.Search("/"))
	assert.Empty(t, b.Search("n/a"))
	require.Len(t, b.Search("weg"), 1)
}

func TestQueries_SearchLimit(t *testing.T) {
	var entries []models.CatalogEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, entry(fmt.Sprintf("ABCD%d.SA", i), "Abcd", "Bancos"))
	}
	b := loadedBuilder(t, entries...)

	results := b.Search("abcd")
	require.Len(t, results, DefaultSearchLimit)
	assert.Equal(t, "ABCD0.SA", results[0].Ticker)
	assert.Equal(t, "ABCD1.SA", results[1].Ticker)
	assert.Equal(t, "ABCD10.SA", results[2].Ticker)
}

func TestQueries_BESSTUniverse(t *testing.T) {
	b := loadedBuilder(t, sampleEntries()...)
	assert.Equal(t, []string{"BBSE3.SA", "ITUB4.SA", "SBSP3.SA", "TAEE11.SA", "VIVT3.SA"}, b.BESSTUniverse())
}

func TestQueries_StatsAndEntry(t *testing.T) {
	b := loadedBuilder(t, sampleEntries()...)

	stats := b.Stats()
	assert.Equal(t, 7, stats.TotalStocks)
	assert.Equal(t, 6, stats.TotalSectors)
	assert.True(t, stats.CacheValid)
	assert.Equal(t, StateFresh, stats.State)
	require.NotNil(t, stats.LastUpdated)
	assert.True(t, testNow.Add(-time.Hour).Equal(*stats.LastUpdated))

	e, ok := b.Entry(" taee11 ")
	require.True(t, ok)
	assert.Equal(t, "Taesa", e.Name)

	_, ok = b.Entry("NOPE3")
	assert.False(t, ok)
}

func TestIsBESSTSector(t *testing.T) {
	tests := []struct {
		sector, industry string
		want             bool
	}{
		{"Financial Services", "Banks - Diversified", true},
		{"Bancos", "", true},
		{"Utilities", "Utilities - Regulated Electric", true},
		{"Energia Elétrica", "", true},
		{"Saneamento", "", true},
		{"", "Water Utilities", true},
		{"Seguradoras", "", true},
		{"Communication Services", "Telecom Services", true},
		{"Telecomunicações", "", true},
		{"Petróleo", "Oil & Gas Integrated", false},
		{"N/A", "N/A", false},
		{"Mineração", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.sector+"/"+tt.industry, func(t *testing.T) {
			e := &models.CatalogEntry{Sector: tt.sector, Industry: tt.industry}
			assert.Equal(t, tt.want, IsBESSTSector(e))
		})
	}
	assert.False(t, IsBESSTSector(nil))
}
