package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/ternarybob/barsi/internal/app"
	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/models"
	"github.com/ternarybob/barsi/internal/services/catalog"
	"github.com/ternarybob/barsi/internal/services/lists"
)

func register(c *subcommands.Commander) {
	c.Register(&rowsCmd{}, "stocks")
	c.Register(&catalogCmd{}, "stocks")
	c.Register(&watchlistCmd{}, "lists")
	c.Register(&portfolioCmd{}, "lists")
	c.Register(&versionCmd{}, "")
}

var errUsage = errors.New("invalid arguments")

// rowsCmd prints scored rows for the given tickers, or the watchlist.
type rowsCmd struct {
	refresh bool
	output  string
}

func (*rowsCmd) Name() string     { return "rows" }
func (*rowsCmd) Synopsis() string { return "fetch and score stocks against the Barsi criteria" }
func (*rowsCmd) Usage() string {
	return `barsi rows [-refresh] [-o markdown|json|yaml] [ticker ...]

  Fetches quotes and fundamentals for each ticker and scores it against the
  four Barsi criteria. Without tickers the watchlist is used.
`
}

func (c *rowsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "ignore cached rows")
	outputFlag(f, &c.output)
}

func (c *rowsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app.App) error {
		tickers := f.Args()
		if len(tickers) == 0 {
			items, err := a.Watchlist.Load(ctx)
			if err != nil {
				return err
			}
			tickers = items
		}

		var rows []models.StockRow
		if c.refresh {
			rows = a.Rows.RefreshRows(ctx, tickers)
		} else {
			rows = a.Rows.FetchRows(ctx, tickers)
		}

		return emit(c.output, rows, func() string { return rowsTable(rows) })
	})
}

// catalogCmd reads and rebuilds the ticker catalog.
type catalogCmd struct {
	output string
}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "inspect or rebuild the B3 ticker catalog" }
func (*catalogCmd) Usage() string {
	return `barsi catalog [-o markdown|json|yaml] <action> [args]

  Actions:
    status          show size and freshness of the catalog
    rebuild         fetch listings, enrich them and save the catalog
    search <query>  match ticker, name or industry
    sectors         list known sectors
    sector <name>   list tickers of a sector
    besst           list tickers in the Barsi sectors
    show <ticker>   show one catalog entry
`
}

func (c *catalogCmd) SetFlags(f *flag.FlagSet) {
	outputFlag(f, &c.output)
}

func (c *catalogCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		args = []string{"status"}
	}
	action, rest := args[0], args[1:]

	return run(ctx, func(ctx context.Context, a *app.App) error {
		if action == "rebuild" {
			report, err := a.Catalog.Rebuild(ctx)
			if err != nil {
				return err
			}
			return emit(c.output, report, func() string { return reportMarkdown(report) })
		}

		snap, err := a.Catalog.Load(ctx)
		if err != nil {
			return err
		}
		for _, w := range snap.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if snap.State == catalog.StateStale {
			fmt.Fprintln(os.Stderr, "catalog is stale: run `barsi catalog rebuild` to refresh it")
		}

		switch action {
		case "status":
			stats := a.Catalog.Stats()
			return emit(c.output, stats, func() string { return statsMarkdown(stats) })
		case "search":
			if len(rest) == 0 {
				return fmt.Errorf("%w: search needs a query", errUsage)
			}
			results := a.Catalog.Search(strings.Join(rest, " "))
			return emit(c.output, results, func() string { return entriesTable(results) })
		case "sectors":
			return printList(c.output, a.Catalog.Sectors())
		case "sector":
			if len(rest) == 0 {
				return fmt.Errorf("%w: sector needs a name", errUsage)
			}
			return printList(c.output, a.Catalog.TickersBySector(strings.Join(rest, " ")))
		case "besst":
			return printList(c.output, a.Catalog.BESSTUniverse())
		case "show":
			if len(rest) != 1 {
				return fmt.Errorf("%w: show needs one ticker", errUsage)
			}
			e, ok := a.Catalog.Entry(rest[0])
			if !ok {
				return fmt.Errorf("%s is not in the catalog", common.NormalizeTicker(rest[0]))
			}
			return emit(c.output, e, func() string { return entriesTable([]*models.CatalogEntry{e}) })
		default:
			return fmt.Errorf("%w: unknown catalog action %q", errUsage, action)
		}
	})
}

// watchlistCmd manages the followed tickers.
type watchlistCmd struct{}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "list, add or remove watched tickers" }
func (*watchlistCmd) Usage() string {
	return `barsi watchlist [list | add <ticker> ... | remove <ticker> ...]
`
}

func (*watchlistCmd) SetFlags(*flag.FlagSet) {}

func (*watchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	action, tickers := args[0], args[1:]

	return run(ctx, func(ctx context.Context, a *app.App) error {
		if _, err := a.Watchlist.Load(ctx); err != nil {
			return err
		}

		switch action {
		case "list":
		case "add":
			for _, t := range tickers {
				added, err := a.Watchlist.Add(ctx, t)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(os.Stderr, "%s is already watched\n", common.NormalizeTicker(t))
				}
			}
		case "remove":
			for _, t := range tickers {
				removed, err := a.Watchlist.Remove(ctx, t)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(os.Stderr, "%s is not watched\n", common.NormalizeTicker(t))
				}
			}
		default:
			return fmt.Errorf("%w: unknown watchlist action %q", errUsage, action)
		}
		return printList(outputMarkdown, a.Watchlist.Items())
	})
}

// portfolioCmd manages holdings and values them.
type portfolioCmd struct {
	output string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "manage holdings and project dividend income" }
func (*portfolioCmd) Usage() string {
	return `barsi portfolio [-o markdown|json|yaml] [list | set <ticker> <quantity> | remove <ticker> | value]

  value fetches the held tickers and prints the total value, the expected
  dividends from the trailing twelve months and the holdings meeting the
  Barsi criteria.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	outputFlag(f, &c.output)
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	action, rest := args[0], args[1:]

	return run(ctx, func(ctx context.Context, a *app.App) error {
		if _, err := a.Portfolio.Load(ctx); err != nil {
			return err
		}

		switch action {
		case "list":
		case "set":
			if len(rest) != 2 {
				return fmt.Errorf("%w: set needs a ticker and a quantity", errUsage)
			}
			qty, err := strconv.ParseFloat(rest[1], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", lists.ErrInvalidQuantity, rest[1])
			}
			if err := a.Portfolio.Set(ctx, rest[0], qty); err != nil {
				return err
			}
		case "remove":
			if len(rest) != 1 {
				return fmt.Errorf("%w: remove needs one ticker", errUsage)
			}
			if _, err := a.Portfolio.Remove(ctx, rest[0]); err != nil {
				return err
			}
		case "value":
			rows := a.Rows.FetchRows(ctx, a.Portfolio.Tickers())
			v := valuation{
				Holdings:  a.Portfolio.Holdings(),
				Total:     a.Portfolio.TotalValue(rows),
				Dividends: a.Portfolio.FutureDividends(rows),
				Barsi:     lists.BarsiFilter(rows),
			}
			return emit(c.output, v, func() string { return valuationMarkdown(v, rows) })
		default:
			return fmt.Errorf("%w: unknown portfolio action %q", errUsage, action)
		}

		return emit(c.output, a.Portfolio.Holdings(), func() string { return holdingsTable(a.Portfolio.Holdings()) })
	})
}

// versionCmd prints build information.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print version information" }
func (*versionCmd) Usage() string          { return "barsi version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Printf("Barsi version %s\n", common.GetBuildInfo())
	return subcommands.ExitSuccess
}
