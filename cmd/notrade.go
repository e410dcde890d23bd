package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

type notradeCmd struct {
	signature string
	date      string
}

func (*notradeCmd) Name() string     { return "notrade" }
func (*notradeCmd) Synopsis() string { return "record a day without trades" }
func (*notradeCmd) Usage() string {
	return `wsoa notrade [-a <agent>] [-d <date>]

  Appends a bookkeeping snapshot carrying the latest holdings forward, so
  a day without decisions still lands in the equity curve. The session's
  trade marker is reset for the next day.
`
}

func (c *notradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.signature, "a", "", "Agent signature, defaults to the session agent.")
	f.StringVar(&c.date, "d", "", "Date to record, defaults to the session's trading day.")
}

func (c *notradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	flags := Flags()
	signature := c.signature
	if signature == "" {
		signature, _, _ = flags.Get(arena.KeySignature)
	}
	if signature == "" {
		fmt.Fprintln(os.Stderr, "Error: agent signature is required.")
		return subcommands.ExitUsageError
	}

	on, err := sessionDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	snapshot, err := Store().AppendNoTrade(signature, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := flags.Set(arena.KeyIfTrade, arena.FlagFalse); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded no-trade for %q on %s (id %d).\n", signature, on, snapshot.ID)
	return subcommands.ExitSuccess
}
