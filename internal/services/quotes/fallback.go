package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/eodhd"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/models"
)

// FallbackProvider tries each provider in order and returns the first success.
type FallbackProvider struct {
	providers []interfaces.QuoteProvider
	logger    arbor.ILogger
}

var _ interfaces.QuoteProvider = (*FallbackProvider)(nil)

// NewFallbackProvider chains providers; the first one is the primary.
func NewFallbackProvider(logger arbor.ILogger, providers ...interfaces.QuoteProvider) *FallbackProvider {
	return &FallbackProvider{providers: providers, logger: logger}
}

// Name returns the primary provider name.
func (f *FallbackProvider) Name() string {
	if len(f.providers) == 0 {
		return "none"
	}
	return f.providers[0].Name()
}

// Fetch returns the first provider payload that succeeds.
func (f *FallbackProvider) Fetch(ctx context.Context, ticker string) (*models.QuotePayload, error) {
	var errs []error
	for _, p := range f.providers {
		payload, err := p.Fetch(ctx, ticker)
		if err == nil {
			return payload, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		f.logger.Debug().Err(err).Str("ticker", ticker).Str("provider", p.Name()).Msg("Quote provider failed, trying next")
	}
	return nil, fmt.Errorf("all quote providers failed for %s: %w", ticker, errors.Join(errs...))
}

// Profile returns the first provider profile that succeeds.
func (f *FallbackProvider) Profile(ctx context.Context, ticker string) (map[string]any, error) {
	var errs []error
	for _, p := range f.providers {
		profile, err := p.Profile(ctx, ticker)
		if err == nil {
			return profile, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("all quote providers failed for %s: %w", ticker, errors.Join(errs...))
}

// NewProvider builds the quote provider selected by config.
// The EODHD client is shared with the catalog's symbol-list source and may be nil
// when no API key is configured.
func NewProvider(config *common.Config, client *eodhd.Client, logger arbor.ILogger) (interfaces.QuoteProvider, error) {
	yahoo := NewYahooProvider(logger, config.Quotes.HistoryYears)

	switch config.ResolvedProvider() {
	case ProviderYahoo:
		return yahoo, nil
	case ProviderEODHD:
		if client == nil {
			return nil, fmt.Errorf("eodhd provider requires an API key")
		}
		primary := NewEODHDProvider(client, logger, WithHistoryYears(config.Quotes.HistoryYears))
		if config.Quotes.Fallback {
			return NewFallbackProvider(logger, primary, yahoo), nil
		}
		return primary, nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", config.Quotes.Provider)
	}
}
