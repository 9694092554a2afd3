package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/eodhd"
	"github.com/ternarybob/barsi/internal/httpclient"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/services/cache"
	"github.com/ternarybob/barsi/internal/services/catalog"
	"github.com/ternarybob/barsi/internal/services/lists"
	"github.com/ternarybob/barsi/internal/services/metrics"
	"github.com/ternarybob/barsi/internal/services/quotes"
	"github.com/ternarybob/barsi/internal/services/scraper"
	"github.com/ternarybob/barsi/internal/services/stockdata"
	"github.com/ternarybob/barsi/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Store    interfaces.DocumentStore
	EODHD    *eodhd.Client // nil without an API key
	Provider interfaces.QuoteProvider

	Rows      *stockdata.Manager
	Catalog   *catalog.Builder
	Watchlist *lists.Watchlist
	Portfolio *lists.Portfolio
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	store, err := storage.NewDocumentStore(logger, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.Store = store

	if cfg.EODHD.APIKey != "" {
		app.EODHD = eodhd.NewClient(cfg.EODHD.APIKey,
			eodhd.WithBaseURL(cfg.EODHD.BaseURL),
			eodhd.WithHTTPClient(httpclient.New(time.Duration(cfg.EODHD.Timeout), cfg.Scraper.UserAgent)),
			eodhd.WithRateLimit(cfg.EODHD.RateLimit),
			eodhd.WithLogger(logger),
		)
	}

	provider, err := quotes.NewProvider(cfg, app.EODHD, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize quote provider: %w", err)
	}
	app.Provider = provider

	rowCache := cache.NewService(cache.WithTTL(time.Duration(cfg.Cache.TTL)))
	app.Rows = stockdata.NewManager(provider, rowCache, metrics.NewExtractor(), cfg.StockData.Workers, logger)

	app.Catalog = catalog.NewBuilder(store, app.catalogSources(), provider, catalog.OptionsFromConfig(cfg.Catalog), logger)
	app.Watchlist = lists.NewWatchlist(store, cfg.Watchlist.Defaults, logger)
	app.Portfolio = lists.NewPortfolio(store, logger)

	logger.Debug().
		Str("provider", provider.Name()).
		Str("storage", cfg.Storage.Backend).
		Int("workers", cfg.StockData.Workers).
		Msg("Application initialization complete")

	return app, nil
}

// catalogSources returns the configured listing sources in priority order.
// The EODHD symbol list is skipped without an API key.
func (a *App) catalogSources() []interfaces.CatalogSource {
	var sources []interfaces.CatalogSource
	for _, name := range a.Config.Catalog.Sources {
		switch name {
		case scraper.SourceDadosDeMercado:
			sources = append(sources, scraper.NewDadosDeMercado(a.Config.Scraper, a.Logger))
		case scraper.SourceEODHD:
			if a.EODHD == nil {
				a.Logger.Debug().Msg("EODHD symbol list disabled: no API key")
				continue
			}
			sources = append(sources, scraper.NewEODHDSymbols(a.EODHD, a.Logger))
		}
	}
	return sources
}

// LoadLists reads the watchlist and portfolio documents.
func (a *App) LoadLists(ctx context.Context) error {
	if _, err := a.Watchlist.Load(ctx); err != nil {
		return err
	}
	if _, err := a.Portfolio.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}
