package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

type updateCmd struct {
	date string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch the latest daily candles into the price archive" }
func (*updateCmd) Usage() string {
	return `wsoa update [-d <date>]

  Fetches missing daily candles from the exchange for every tracked
  symbol, up to the given date, and rewrites the archive. A missing
  archive starts from the default symbol universe. Responses are cached on
  disk for a day, so re-running is cheap.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Last day to fetch, defaults to the session's trading day.")
}

func (c *updateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	end, err := sessionDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	archive, err := arena.LoadPriceArchive(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: archive does not exist, starting from the default universe.")
		archive, err = arena.NewPriceArchive(), nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if len(archive.Symbols()) == 0 {
		for _, symbol := range arena.DefaultSymbols {
			archive.AddSymbol(symbol)
		}
	}

	if err := archive.Update(end); err != nil {
		fmt.Fprintln(os.Stderr, "Error updating candles:", err)
		// Partial updates are still worth saving.
	}
	if err := archive.SavePriceArchive(*pricesFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Archive updated through %s for %d symbols.\n", end, len(archive.Symbols()))
	return subcommands.ExitSuccess
}
