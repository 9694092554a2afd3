// -----------------------------------------------------------------------
// Dados de Mercado scraper - B3 listings from the public /acoes index
// -----------------------------------------------------------------------

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/httpclient"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

// SourceDadosDeMercado identifies listings scraped from dadosdemercado.com.br.
const SourceDadosDeMercado = "dadosdemercado"

const (
	// DefaultBaseURL is the site root.
	DefaultBaseURL = "https://www.dadosdemercado.com.br"

	listingPath = "/acoes"
	maxBodySize = 8 << 20
)

var (
	// stockHref matches links to a single stock page, e.g. /acoes/petr4
	stockHref = regexp.MustCompile(`/acoes/([a-zA-Z0-9]+)/?$`)
	// tickerCell matches a bare B3 code in a table cell
	tickerCell = regexp.MustCompile(`^[A-Z]{4}\d{1,2}$`)
)

// DadosDeMercado lists B3 tickers from the dadosdemercado.com.br stock index.
type DadosDeMercado struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

var _ interfaces.CatalogSource = (*DadosDeMercado)(nil)

// NewDadosDeMercado creates a scraper from the scraper config section.
func NewDadosDeMercado(config common.ScraperConfig, logger arbor.ILogger) *DadosDeMercado {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DadosDeMercado{
		baseURL:    baseURL,
		httpClient: httpclient.New(time.Duration(config.Timeout), config.UserAgent),
		logger:     logger,
	}
}

// Name returns the source name.
func (s *DadosDeMercado) Name() string {
	return SourceDadosDeMercado
}

// Listings downloads the stock index and extracts every ticker it links to.
// Stock page anchors are preferred; tables holding bare codes are the fallback.
// An empty result is not an error.
func (s *DadosDeMercado) Listings(ctx context.Context) ([]models.CatalogEntry, error) {
	pageURL := s.baseURL + listingPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	entries, err := s.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("url", pageURL).
		Int("listings", len(entries)).
		Msg("Scraped stock index")

	return entries, nil
}

// Parse extracts listings from an index page.
func (s *DadosDeMercado) Parse(r io.Reader) ([]models.CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stock index HTML: %w", err)
	}

	entries := s.fromAnchors(doc)
	if len(entries) == 0 {
		entries = s.fromTables(doc)
	}
	return entries, nil
}

func (s *DadosDeMercado) fromAnchors(doc *goquery.Document) []models.CatalogEntry {
	var entries []models.CatalogEntry
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if u, err := url.Parse(href); err == nil {
			href = u.Path
		}
		m := stockHref.FindStringSubmatch(href)
		if m == nil {
			return
		}
		code := strings.ToUpper(m[1])
		if seen[code] {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" || strings.EqualFold(name, code) {
			name = strings.TrimSpace(a.AttrOr("title", ""))
		}
		entry, ok := s.entry(code, name)
		if !ok {
			return
		}
		seen[code] = true
		entries = append(entries, entry)
	})

	return entries
}

func (s *DadosDeMercado) fromTables(doc *goquery.Document) []models.CatalogEntry {
	var entries []models.CatalogEntry
	seen := make(map[string]bool)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
			code := strings.TrimSpace(cell.Text())
			if !tickerCell.MatchString(code) {
				return true
			}
			if !seen[code] {
				name := ""
				if i+1 < cells.Length() {
					name = strings.TrimSpace(cells.Eq(i + 1).Text())
				}
				if entry, ok := s.entry(code, name); ok {
					seen[code] = true
					entries = append(entries, entry)
				}
			}
			return false
		})
	})

	return entries
}

func (s *DadosDeMercado) entry(code, name string) (models.CatalogEntry, bool) {
	ticker, err := common.ValidateTicker(code)
	if err != nil {
		return models.CatalogEntry{}, false
	}
	code = models.TickerCode(ticker)
	if name == "" {
		name = code
	}
	return models.CatalogEntry{
		Ticker:   ticker,
		Code:     code,
		Name:     name,
		Sector:   models.PlaceholderSector,
		Industry: models.PlaceholderSector,
		Link:     fmt.Sprintf("%s%s/%s", s.baseURL, listingPath, strings.ToLower(code)),
		Currency: "BRL",
		Exchange: "B3",
		Country:  "Brazil",
		Source:   SourceDadosDeMercado,
	}, true
}
