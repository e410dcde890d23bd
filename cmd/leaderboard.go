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

type leaderboardCmd struct {
	sort string
}

func (*leaderboardCmd) Name() string     { return "leaderboard" }
func (*leaderboardCmd) Synopsis() string { return "rank all agents by a performance metric" }
func (*leaderboardCmd) Usage() string {
	return `wsoa leaderboard [-sort <metric>]

  Derives metrics for every registered agent and prints the ranking,
  descending. Agents whose metrics cannot be derived are listed last with
  the failure. Metrics: cumulative_return (default), annualized_return,
  volatility, sharpe_ratio, sortino_ratio, max_drawdown.
`
}

func (c *leaderboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sort, "sort", "", "Metric to rank by, defaults to cumulative_return.")
}

func (c *leaderboardCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := arena.ParseSortKey(c.sort)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	archive, err := Archive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	rows, err := arena.BuildLeaderboard(Store(), archive, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LeaderboardMarkdown(rows, key))
	return subcommands.ExitSuccess
}
