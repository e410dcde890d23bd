package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
	"github.com/wsoa/arena/renderer"
)

type detailCmd struct{}

func (*detailCmd) Name() string     { return "detail" }
func (*detailCmd) Synopsis() string { return "show one agent's metrics, equity and recent trades" }
func (*detailCmd) Usage() string {
	return `wsoa detail <signature>

  Prints the full report for one agent.
`
}

func (*detailCmd) SetFlags(f *flag.FlagSet) {}

func (c *detailCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one agent signature is required.")
		return subcommands.ExitUsageError
	}

	archive, err := Archive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	detail, err := arena.Detail(Store(), archive, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.DetailMarkdown(detail))
	return subcommands.ExitSuccess
}
