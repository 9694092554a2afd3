package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Quotes      QuotesConfig    `toml:"quotes"`
	EODHD       EODHDConfig     `toml:"eodhd"`
	Cache       CacheConfig     `toml:"cache"`
	StockData   StockDataConfig `toml:"stockdata"`
	Catalog     CatalogConfig   `toml:"catalog"`
	Scraper     ScraperConfig   `toml:"scraper"`
	Watchlist   WatchlistConfig `toml:"watchlist"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`   // "stdout", "file"
	TimeFormat string   `toml:"time_format"`                                        // Time format for logs (default: "15:04:05")
	Dir        string   `toml:"dir"`                                                // Log directory (default: next to the executable)
}

// StorageConfig selects where documents (catalog, watchlist, portfolio) live.
type StorageConfig struct {
	Backend string       `toml:"backend" validate:"oneof=file badger"` // "file" (JSON files) or "badger"
	Dir     string       `toml:"dir" validate:"required"`              // Directory for JSON documents
	Badger  BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path     string `toml:"path"`      // Database directory path
	InMemory bool   `toml:"in_memory"` // Keep the store in memory (tests, dry runs)
}

// QuotesConfig selects the quote/fundamentals provider.
type QuotesConfig struct {
	Provider     string `toml:"provider" validate:"oneof=eodhd yahoo auto"` // "eodhd", "yahoo", or "auto" (eodhd when an API key is set)
	Fallback     bool   `toml:"fallback"`                                   // Retry a failed fetch on the other provider
	HistoryYears int    `toml:"history_years" validate:"gte=1,lte=20"`      // Years of daily closes fetched per ticker
}

// EODHDConfig contains EODHD API configuration
type EODHDConfig struct {
	APIKey    string   `toml:"api_key"`
	BaseURL   string   `toml:"base_url" validate:"required,url"`
	RateLimit int      `toml:"rate_limit" validate:"gte=1"` // Requests per second
	Timeout   Duration `toml:"timeout" validate:"gt=0"`
}

// CacheConfig controls the per-ticker row cache.
type CacheConfig struct {
	TTL Duration `toml:"ttl" validate:"gt=0"` // default 30s
}

// StockDataConfig controls the stock data manager.
type StockDataConfig struct {
	Workers int `toml:"workers" validate:"gte=1,lte=16"` // 1 = sequential
}

// CatalogConfig controls the catalog builder.
type CatalogConfig struct {
	MaxAge      Duration `toml:"max_age" validate:"gt=0"`            // default 24h
	BatchSize   int      `toml:"batch_size" validate:"gte=4,lte=8"`  // enrichment fetches per batch
	Concurrency int      `toml:"concurrency" validate:"gte=1,lte=8"` // parallel fetches inside a batch
	BatchPause  Duration `toml:"batch_pause" validate:"gte=0"`       // pause between batches
	SearchLimit int      `toml:"search_limit" validate:"gte=1"`      // max search results
	Sources     []string `toml:"sources" validate:"dive,oneof=dadosdemercado eodhd"`
	Enrich      bool     `toml:"enrich"` // enrich listings through the quote provider
}

// ScraperConfig contains the catalog scraper configuration.
type ScraperConfig struct {
	BaseURL   string   `toml:"base_url" validate:"required,url"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout" validate:"gt=0"`
}

// WatchlistConfig contains watchlist defaults.
type WatchlistConfig struct {
	Defaults []string `toml:"defaults"` // Seed tickers used before the first save
}

// Duration is a time.Duration read from TOML strings such as "30s" or "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     "./data",
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
		},
		Quotes: QuotesConfig{
			Provider:     "auto",
			Fallback:     true,
			HistoryYears: 5,
		},
		EODHD: EODHDConfig{
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
			Timeout:   Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			TTL: Duration(30 * time.Second),
		},
		StockData: StockDataConfig{
			Workers: 1,
		},
		Catalog: CatalogConfig{
			MaxAge:      Duration(24 * time.Hour),
			BatchSize:   6,
			Concurrency: 6,
			BatchPause:  Duration(time.Second),
			SearchLimit: 20,
			Sources:     []string{"dadosdemercado", "eodhd"},
			Enrich:      true,
		},
		Scraper: ScraperConfig{
			BaseURL:   "https://www.dadosdemercado.com.br",
			UserAgent: "Mozilla/5.0 (compatible; barsi/1.0)",
			Timeout:   Duration(30 * time.Second),
		},
		Watchlist: WatchlistConfig{
			Defaults: []string{"ITUB4.SA", "PETR4.SA", "VALE3.SA", "BBDC4.SA", "ABEV3.SA"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> .env -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env is optional; existing process variables win over it
	_ = godotenv.Load()

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BARSI_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("BARSI_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	if backend := os.Getenv("BARSI_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if dir := os.Getenv("BARSI_STORAGE_DIR"); dir != "" {
		config.Storage.Dir = dir
	}

	if provider := os.Getenv("BARSI_QUOTES_PROVIDER"); provider != "" {
		config.Quotes.Provider = provider
	}

	// EODHD key: BARSI_EODHD_API_KEY takes precedence over the vendor's EODHD_API_KEY
	if key := os.Getenv("BARSI_EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	} else if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}

	if workers := os.Getenv("BARSI_STOCKDATA_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.StockData.Workers = w
		}
	}

	if ttl := os.Getenv("BARSI_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Cache.TTL = Duration(d)
		}
	}
}

// FlagOverrides holds command-line values that override config.
// Zero values leave the config untouched.
type FlagOverrides struct {
	LogLevel   string
	StorageDir string
	Provider   string
	Workers    int
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.LogLevel != "" {
		config.Logging.Level = strings.ToLower(flags.LogLevel)
	}
	if flags.StorageDir != "" {
		config.Storage.Dir = flags.StorageDir
	}
	if flags.Provider != "" {
		config.Quotes.Provider = flags.Provider
	}
	if flags.Workers > 0 {
		config.StockData.Workers = flags.Workers
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Quotes.Provider == "eodhd" && c.EODHD.APIKey == "" {
		return fmt.Errorf("invalid configuration: quotes.provider = eodhd requires eodhd.api_key (or BARSI_EODHD_API_KEY)")
	}
	return nil
}

// ResolvedProvider returns the provider that "auto" resolves to.
func (c *Config) ResolvedProvider() string {
	if c.Quotes.Provider != "auto" {
		return c.Quotes.Provider
	}
	if c.EODHD.APIKey != "" {
		return "eodhd"
	}
	return "yahoo"
}

// IsProduction returns true if the environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}
