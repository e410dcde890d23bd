package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

type equityCmd struct{}

func (*equityCmd) Name() string     { return "equity" }
func (*equityCmd) Synopsis() string { return "print an agent's marked equity curve" }
func (*equityCmd) Usage() string {
	return `wsoa equity <signature>

  Prints the agent's full equity curve as JSONL, one point per ledger
  record, suitable for piping into plotting tools.
`
}

func (*equityCmd) SetFlags(f *flag.FlagSet) {}

func (c *equityCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one agent signature is required.")
		return subcommands.ExitUsageError
	}

	archive, err := Archive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	ledger, err := Store().Ledger(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	enc := json.NewEncoder(os.Stdout)
	for _, point := range arena.EquityCurve(ledger, archive) {
		if err := enc.Encode(point); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
