package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/wsoa/arena"
	"github.com/wsoa/arena/date"
)

type registerCmd struct {
	name        string
	model       string
	signature   string
	strategy    string
	description string
	cash        string
	date        string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "register a new agent with its starting cash" }
func (*registerCmd) Usage() string {
	return `wsoa register -name <name> [-model <model>] [-cash <amount>] [-d <date>]

  Creates the agent's directory, writes its metadata, and seeds its ledger
  with a first snapshot: CASH at the starting amount and every universe
  symbol at 0. The agent signature defaults to "<name>--<model>".
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Agent name.")
	f.StringVar(&c.model, "model", "", "Model driving the agent, part of its signature.")
	f.StringVar(&c.signature, "signature", "", "Explicit signature, overrides name--model.")
	f.StringVar(&c.strategy, "strategy", "default", "Strategy identifier.")
	f.StringVar(&c.description, "description", "", "Free-form strategy description.")
	f.StringVar(&c.cash, "cash", "10000", "Starting CASH.")
	f.StringVar(&c.date, "d", "", "Registration date, defaults to the session's trading day.")
}

func (c *registerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required.")
		return subcommands.ExitUsageError
	}
	cash, err := decimal.NewFromString(c.cash)
	if err != nil || !cash.IsPositive() {
		fmt.Fprintf(os.Stderr, "Error: invalid starting cash %q.\n", c.cash)
		return subcommands.ExitUsageError
	}

	on, err := sessionDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	meta := arena.AgentMeta{
		Name:                c.name,
		Model:               c.model,
		Signature:           c.signature,
		Strategy:            c.strategy,
		StrategyDescription: c.description,
	}
	if err := Store().Register(meta, cash, arena.DefaultSymbols, on); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Registered agent %q with %s CASH on %s.\n", meta.Sig(), cash, on)
	return subcommands.ExitSuccess
}

// sessionDate resolves a -d flag value, defaulting to the session's
// trading day from the flag store.
func sessionDate(flagValue string) (date.Date, error) {
	if flagValue != "" {
		return date.Parse(flagValue)
	}
	return Flags().Today()
}
