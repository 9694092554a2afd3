package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/catalog"
	"github.com/ternarybob/barsi/internal/services/lists"
)

// valuation is the output of `portfolio value`.
type valuation struct {
	Holdings  []lists.Holding        `json:"holdings"`
	Total     decimal.Decimal        `json:"total"`
	Dividends lists.DividendForecast `json:"dividends"`
	Barsi     []string               `json:"barsi"`
}

// render prints markdown through glamour, or raw with -plain.
func render(md string) error {
	if *plain {
		_, err := fmt.Fprint(os.Stdout, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}

type table struct {
	b strings.Builder
}

func newTable(headers ...string) *table {
	t := &table{}
	t.row(headers...)
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	t.row(seps...)
	return t
}

func (t *table) row(cells ...string) {
	t.b.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			t.b.WriteString(" | ")
		}
		t.b.WriteString(strings.ReplaceAll(c, "|", "\\|"))
	}
	t.b.WriteString(" |\n")
}

func (t *table) String() string {
	return t.b.String()
}

func rowsTable(rows []models.StockRow) string {
	t := newTable("Ticker", "Name", "Price", "Change", "DY", "DY 5y", "DPS 12m", "P/E", "P/B", "ROE", "D/E", "Margin", "Market cap", "Barsi")
	var failed []string
	for _, r := range rows {
		t.row(
			models.TickerCode(r.Ticker),
			r.Name,
			common.FormatPrice(r.CurrentPrice),
			common.FormatChange(r.PriceChangePct),
			common.FormatPercent(r.CurrentDividendYieldPct),
			common.FormatPercent(r.AvgDividendYield5yPct),
			common.FormatPrice(r.DividendPerShareTTM),
			common.FormatRatio(r.PERatio),
			common.FormatRatio(r.PBRatio),
			common.FormatPercent(r.ROEPct),
			common.FormatRatio(r.DebtToEquity),
			common.FormatPercent(r.NetMarginPct),
			common.FormatMarketCap(r.MarketCap),
			r.Score.Label(),
		)
		if r.Error != "" {
			failed = append(failed, fmt.Sprintf("- **%s**: %s", r.Ticker, r.Error))
		}
	}

	md := "# Stocks\n\n" + t.String()
	if len(failed) > 0 {
		md += "\n## Unavailable\n\n" + strings.Join(failed, "\n") + "\n"
	}
	return md
}

func entriesTable(entries []*models.CatalogEntry) string {
	if len(entries) == 0 {
		return "_No matching stocks._\n"
	}
	t := newTable("Ticker", "Name", "Sector", "Industry", "Market cap", "BESST")
	for _, e := range entries {
		besst := ""
		if catalog.IsBESSTSector(e) {
			besst = "yes"
		}
		t.row(e.Ticker, e.Name, e.Sector, e.Industry, common.FormatMarketCap(e.MarketCap), besst)
	}
	return t.String()
}

func statsMarkdown(s catalog.Stats) string {
	updated := "never"
	if s.LastUpdated != nil {
		updated = s.LastUpdated.Local().Format(time.DateTime)
	}
	t := newTable("Stocks", "Sectors", "Last updated", "State")
	t.row(strconv.Itoa(s.TotalStocks), strconv.Itoa(s.TotalSectors), updated, string(s.State))
	return "# Catalog\n\n" + t.String()
}

func reportMarkdown(r *catalog.RebuildReport) string {
	var b strings.Builder
	b.WriteString("# Catalog rebuild\n\n")
	t := newTable("Source", "Listings")
	for source, n := range r.Listed {
		t.row(source, strconv.Itoa(n))
	}
	b.WriteString(t.String())
	fmt.Fprintf(&b, "\n- Run: `%s`\n- Stocks: %d\n- Enriched: %d (%d failed)\n- Seed used: %t\n- Saved: %t\n- Took: %s\n",
		r.RunID, r.Total, r.Enriched, r.EnrichFailed, r.UsedSeed, r.Persisted, r.Duration.Truncate(time.Millisecond))
	if len(r.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func holdingsTable(holdings []lists.Holding) string {
	if len(holdings) == 0 {
		return "_Portfolio is empty._\n"
	}
	t := newTable("Ticker", "Quantity")
	for _, h := range holdings {
		t.row(h.Ticker, strconv.FormatFloat(h.Quantity, 'f', -1, 64))
	}
	return t.String()
}

func valuationMarkdown(v valuation, rows []models.StockRow) string {
	prices := make(map[string]models.Value, len(rows))
	for _, r := range rows {
		prices[r.Ticker] = r.CurrentPrice
	}

	t := newTable("Ticker", "Quantity", "Price", "Dividends 12m")
	for _, h := range v.Holdings {
		t.row(
			h.Ticker,
			strconv.FormatFloat(h.Quantity, 'f', -1, 64),
			common.FormatPrice(prices[h.Ticker]),
			common.FormatPrice(models.Of(v.Dividends.PerTicker[h.Ticker].InexactFloat64())),
		)
	}

	var b strings.Builder
	b.WriteString("# Portfolio\n\n")
	b.WriteString(t.String())
	fmt.Fprintf(&b, "\n- Total value: %s\n- Expected dividends: %s\n",
		common.FormatPrice(models.Of(v.Total.InexactFloat64())),
		common.FormatPrice(models.Of(v.Dividends.Total.InexactFloat64())))
	if len(v.Barsi) > 0 {
		fmt.Fprintf(&b, "- Meeting the Barsi criteria: %s\n", strings.Join(v.Barsi, ", "))
	}
	return b.String()
}
