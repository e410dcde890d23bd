// Package cmd implements the CLI application to run the trading arena.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

// Commands lists every subcommand. A main package registers them on a
// commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&registerCmd{},
	&buyCmd{},
	&sellCmd{},
	&notradeCmd{},
	&leaderboardCmd{},
	&detailCmd{},
	&equityCmd{},
	&fmtCmd{},
	&updateCmd{},
	&serveCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application it is short lived, so globals are fine here.

var agentsDir = flag.String("agents-dir", "agents", "Directory holding one subdirectory per agent")
var pricesFile = flag.String("prices-file", "crypto_prices.jsonl", "Path to the multi-symbol daily price archive")
var flagsFile = flag.String("flags-file", arena.DefaultFlagFile, "Path to the session flag store")

// Store opens the agent store at the configured directory, with
// host-level file locks.
func Store() *arena.Store {
	return arena.DefaultStore(*agentsDir)
}

// Archive loads the configured price archive, pinned to day today so the
// current day's close stays embargoed.
func Archive() (*arena.PriceArchive, error) {
	archive, err := arena.LoadPriceArchive(*pricesFile)
	if err != nil {
		return nil, err
	}
	flags := Flags()
	today, err := flags.Today()
	if err != nil {
		return nil, err
	}
	archive.SetToday(today)
	return archive, nil
}

// Flags opens the session flag store.
func Flags() *arena.FlagStore {
	return arena.NewFlagStore(*flagsFile)
}
