// Package catalog maintains the universe of B3 tickers with their metadata.
//
// The catalog is persisted as a single document and replaced wholesale on rebuild.
// A catalog older than its maximum age is still served, flagged stale; only an
// explicit Rebuild (or the absence of any document) fetches a new one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/metrics"
	"github.com/ternarybob/barsi/internal/worker"
)

// State classifies the loaded catalog.
type State string

const (
	StateEmpty State = "empty"
	StateStale State = "stale"
	StateFresh State = "fresh"
)

// Snapshot is the catalog served to callers together with its freshness.
type Snapshot struct {
	Catalog   *models.Catalog
	State     State
	Staleness common.StalenessResult
	// Rebuilt is set when Load had to build the catalog because none existed.
	Rebuilt *RebuildReport
	// Warnings lists non-fatal problems met while loading.
	Warnings []string
}

// RebuildReport summarises one rebuild run.
type RebuildReport struct {
	RunID        string         `json:"run_id"`
	Listed       map[string]int `json:"listed"` // listings per source
	Total        int            `json:"total"`
	UsedSeed     bool           `json:"used_seed"`
	Enriched     int            `json:"enriched"`
	EnrichFailed int            `json:"enrich_failed"`
	Persisted    bool           `json:"persisted"`
	Warnings     []string       `json:"warnings,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	Duration     time.Duration  `json:"duration"`
}

// Options configures the builder.
type Options struct {
	MaxAge      time.Duration
	Batch       worker.BatchOptions
	Enrich      bool
	SearchLimit int
}

// DefaultOptions returns the 24h freshness window and batches of 6 with a 1s pause.
func DefaultOptions() Options {
	return Options{
		MaxAge: 24 * time.Hour,
		Batch: worker.BatchOptions{
			Size:        6,
			Concurrency: 6,
			Pause:       time.Second,
		},
		Enrich:      true,
		SearchLimit: DefaultSearchLimit,
	}
}

// OptionsFromConfig maps the catalog config section onto builder options.
func OptionsFromConfig(config common.CatalogConfig) Options {
	return Options{
		MaxAge: time.Duration(config.MaxAge),
		Batch: worker.BatchOptions{
			Size:        config.BatchSize,
			Concurrency: config.Concurrency,
			Pause:       time.Duration(config.BatchPause),
		},
		Enrich:      config.Enrich,
		SearchLimit: config.SearchLimit,
	}
}

// Builder loads, rebuilds and queries the catalog.
type Builder struct {
	store    interfaces.DocumentStore
	sources  []interfaces.CatalogSource
	provider interfaces.QuoteProvider
	opts     Options
	logger   arbor.ILogger
	now      func() time.Time

	mu      sync.RWMutex
	current *models.Catalog

	rebuildMu sync.Mutex
}

// NewBuilder creates a catalog builder. provider may be nil, which disables enrichment.
func NewBuilder(store interfaces.DocumentStore, sources []interfaces.CatalogSource, provider interfaces.QuoteProvider, opts Options, logger arbor.ILogger) *Builder {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	return &Builder{
		store:    store,
		sources:  sources,
		provider: provider,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Load reads the persisted catalog and classifies it. With no usable document
// the catalog is rebuilt before returning. A document that exists but cannot be
// read is not rebuilt over: the in-memory catalog is served with a warning.
func (b *Builder) Load(ctx context.Context) (*Snapshot, error) {
	c, warning, err := b.read(ctx)
	if err != nil {
		return nil, err
	}

	if warning != "" {
		snap := b.Snapshot()
		snap.Warnings = append(snap.Warnings, warning)
		return snap, nil
	}

	if c == nil {
		b.logger.Info().Msg("No catalog found, building one")
		report, err := b.Rebuild(ctx)
		if err != nil {
			return nil, err
		}
		snap := b.Snapshot()
		snap.Rebuilt = report
		return snap, nil
	}

	b.mu.Lock()
	b.current = c
	b.mu.Unlock()

	snap := b.Snapshot()
	if snap.State == StateStale {
		b.logger.Info().
			Str("age", snap.Staleness.Age.Truncate(time.Minute).String()).
			Msg("Catalog is stale; rebuild to refresh it")
	}
	return snap, nil
}

// read returns the persisted catalog, or nil when there is none or it cannot be
// decoded. A store failure other than not-found is returned as a warning.
func (b *Builder) read(ctx context.Context) (*models.Catalog, string, error) {
	data, err := b.store.Load(ctx, interfaces.DocumentCatalog)
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		return nil, "", nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", err
		}
		b.logger.Warn().Err(err).Msg("Failed to read catalog document")
		return nil, fmt.Sprintf("catalog document could not be read: %v", err), nil
	}

	c, migrated, err := decodeCatalog(data)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Discarding unreadable catalog document")
		return nil, "", nil
	}
	if migrated {
		b.logger.Info().Int("entries", len(c.Entries)).Msg("Migrated legacy catalog document")
		if err := b.persist(ctx, c); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to save migrated catalog")
		}
	}
	return c, "", nil
}

// Snapshot returns the catalog currently held in memory.
func (b *Builder) Snapshot() *Snapshot {
	b.mu.RLock()
	c := b.current
	b.mu.RUnlock()

	if c == nil {
		empty := models.NewCatalog(nil, time.Time{})
		empty.LastUpdated = nil
		return &Snapshot{
			Catalog:   empty,
			State:     StateEmpty,
			Staleness: common.CheckStaleness(nil, b.now(), b.opts.MaxAge),
		}
	}

	staleness := common.CheckStaleness(c.LastUpdated, b.now(), b.opts.MaxAge)
	state := StateFresh
	if staleness.IsStale {
		state = StateStale
	}
	return &Snapshot{Catalog: c, State: state, Staleness: staleness}
}

// Rebuild fetches listings from every source, falls back to the seed when all are
// empty, enriches the entries in paced batches and persists the result. A failed
// save is reported as a warning; the new catalog is served either way. Cancelling
// ctx stops new batches from starting and discards the run.
func (b *Builder) Rebuild(ctx context.Context) (*RebuildReport, error) {
	b.rebuildMu.Lock()
	defer b.rebuildMu.Unlock()

	report := &RebuildReport{
		RunID:     common.NewRunID(),
		Listed:    make(map[string]int),
		StartedAt: b.now(),
	}
	logger := b.logger.WithCorrelationId(report.RunID)
	start := time.Now()

	logger.Info().Int("sources", len(b.sources)).Msg("Catalog rebuild started")

	entries := b.collect(ctx, report, logger)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog rebuild cancelled: %w", err)
	}

	if len(entries) == 0 {
		logger.Warn().Msg("No listings from any source, using seed tickers")
		entries = seedEntries()
		report.UsedSeed = true
		report.Warnings = append(report.Warnings, "all listing sources were empty; using seed tickers")
	}

	ptrs := make([]*models.CatalogEntry, len(entries))
	for i := range entries {
		ptrs[i] = &entries[i]
	}

	if b.opts.Enrich && b.provider != nil {
		b.enrich(ctx, ptrs, report, logger)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("catalog rebuild cancelled: %w", err)
		}
		if report.Enriched > 0 && !anySector(ptrs) {
			logger.Warn().Str("provider", b.provider.Name()).Msg("Enrichment supplied no sectors")
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"quote provider %s supplied no sectors; sector and BESST queries will be empty", b.provider.Name()))
		}
	}

	byTicker := make(map[string]*models.CatalogEntry, len(ptrs))
	for _, e := range ptrs {
		byTicker[e.Ticker] = e
	}
	c := models.NewCatalog(byTicker, b.now())
	report.Total = c.TotalCount

	b.mu.Lock()
	b.current = c
	b.mu.Unlock()

	if err := b.persist(ctx, c); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist catalog")
		report.Warnings = append(report.Warnings, "catalog not saved: "+err.Error())
	} else {
		report.Persisted = true
	}

	report.Duration = time.Since(start)
	logger.Info().
		Int("total", report.Total).
		Int("enriched", report.Enriched).
		Int("enrich_failed", report.EnrichFailed).
		Bool("used_seed", report.UsedSeed).
		Bool("persisted", report.Persisted).
		Str("duration", report.Duration.Truncate(time.Millisecond).String()).
		Msg("Catalog rebuild finished")

	return report, nil
}

func anySector(entries []*models.CatalogEntry) bool {
	for _, e := range entries {
		if !models.IsPlaceholder(e.Sector) {
			return true
		}
	}
	return false
}

// collect unions the listings of every source by normalised ticker. Earlier
// sources win the base fields; later ones only fill blanks.
func (b *Builder) collect(ctx context.Context, report *RebuildReport, logger arbor.ILogger) []models.CatalogEntry {
	var merged []models.CatalogEntry
	index := make(map[string]int)

	for _, src := range b.sources {
		if ctx.Err() != nil {
			return nil
		}
		listings, err := src.Listings(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("source", src.Name()).Msg("Listing source failed")
			report.Warnings = append(report.Warnings, fmt.Sprintf("source %s failed: %v", src.Name(), err))
			continue
		}
		report.Listed[src.Name()] = len(listings)

		for _, entry := range listings {
			ticker, err := common.ValidateTicker(entry.Ticker)
			if err != nil {
				continue
			}
			entry.Ticker = ticker
			entry.Code = models.TickerCode(ticker)
			if entry.Source == "" {
				entry.Source = src.Name()
			}

			if i, ok := index[ticker]; ok {
				fillBlanks(&merged[i], entry)
				continue
			}
			index[ticker] = len(merged)
			merged = append(merged, entry)
		}
	}
	return merged
}

func (b *Builder) enrich(ctx context.Context, entries []*models.CatalogEntry, report *RebuildReport, logger arbor.ILogger) {
	enriched := make([]bool, len(entries))

	worker.RunBatches(ctx, len(entries), b.opts.Batch, logger, func(ctx context.Context, i int) {
		entry := entries[i]
		var profile map[string]any
		err := common.SafeCall(logger, "enrich "+entry.Ticker, func() error {
			var err error
			profile, err = b.provider.Profile(ctx, entry.Ticker)
			return err
		})
		if err != nil {
			logger.Debug().Err(err).Str("ticker", entry.Ticker).Msg("Enrichment failed, keeping base entry")
			return
		}
		applyProfile(entry, profile)
		enriched[i] = true
	})

	for _, ok := range enriched {
		if ok {
			report.Enriched++
		} else {
			report.EnrichFailed++
		}
	}
}

func (b *Builder) persist(ctx context.Context, c *models.Catalog) error {
	data, err := encodeCatalog(c)
	if err != nil {
		return err
	}
	return b.store.Save(ctx, interfaces.DocumentCatalog, data)
}

// applyProfile overwrites entry fields with non-placeholder profile values.
func applyProfile(entry *models.CatalogEntry, profile map[string]any) {
	if name, ok := profileText(profile, models.InfoShortName); ok {
		entry.Name = name
	}
	if name, ok := profileText(profile, models.InfoLongName); ok {
		entry.Name = name
	}
	set := func(dst *string, key string) {
		if v, ok := profileText(profile, key); ok {
			*dst = v
		}
	}
	set(&entry.Sector, models.InfoSector)
	set(&entry.Industry, models.InfoIndustry)
	set(&entry.Currency, models.InfoCurrency)
	set(&entry.Exchange, models.InfoExchange)
	set(&entry.Country, models.InfoCountry)
	set(&entry.ISIN, models.InfoISIN)

	if v, ok := profile[models.InfoMarketCap]; ok {
		if mc := metrics.Number(v); mc.Available() && mc.Float() > 0 {
			entry.MarketCap = mc
		}
	}
	entry.Enriched = true
}

func profileText(profile map[string]any, key string) (string, bool) {
	s, ok := profile[key].(string)
	if !ok || models.IsPlaceholder(s) {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// fillBlanks copies fields from src into dst where dst has none.
func fillBlanks(dst *models.CatalogEntry, src models.CatalogEntry) {
	fill := func(d *string, s string) {
		if models.IsPlaceholder(*d) && !models.IsPlaceholder(s) {
			*d = s
		}
	}
	if dst.Name == "" || dst.Name == dst.Code {
		if !models.IsPlaceholder(src.Name) {
			dst.Name = src.Name
		}
	}
	fill(&dst.Sector, src.Sector)
	fill(&dst.Industry, src.Industry)
	fill(&dst.ISIN, src.ISIN)
	fill(&dst.Link, src.Link)
	fill(&dst.Currency, src.Currency)
	fill(&dst.Exchange, src.Exchange)
	fill(&dst.Country, src.Country)
	if !dst.MarketCap.Available() && src.MarketCap.Available() {
		dst.MarketCap = src.MarketCap
	}
}
