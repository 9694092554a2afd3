package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/app"
	"github.com/ternarybob/barsi/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles configPaths // Multiple -config flags supported
	logLevel    = flag.String("log-level", "", "Log level (overrides config)")
	storageDir  = flag.String("data", "", "Data directory (overrides config)")
	provider    = flag.String("provider", "", "Quote provider: eodhd, yahoo or auto (overrides config)")
	workers     = flag.Int("workers", 0, "Concurrent ticker fetches (overrides config)")
	plain       = flag.Bool("plain", false, "Print raw markdown instead of rendered tables")
	quiet       = flag.Bool("q", false, "Do not print the banner")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	// Shell completion exits here when invoked by the shell.
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// setup loads configuration and builds the application.
// Order: defaults -> config files -> .env -> environment -> flags.
func setup() (*app.App, error) {
	if len(configFiles) == 0 {
		if _, err := os.Stat("barsi.toml"); err == nil {
			configFiles = append(configFiles, "barsi.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, common.FlagOverrides{
		LogLevel:   *logLevel,
		StorageDir: *storageDir,
		Provider:   *provider,
		Workers:    *workers,
	})

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := common.SetupLogger(config)

	if !*quiet {
		common.PrintBanner(common.LoadVersionFromFile())
	}

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("storage_backend", config.Storage.Backend).
		Str("storage_dir", config.Storage.Dir).
		Str("provider", config.ResolvedProvider()).
		Msg("Resolved configuration")

	return app.New(config, logger)
}

// run wraps a command body with application setup and teardown.
func run(ctx context.Context, fn func(ctx context.Context, a *app.App) error) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeApp(a.Logger, a)

	if err := fn(ctx, a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func closeApp(logger arbor.ILogger, a *app.App) {
	if err := a.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close application")
	}
}
