package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

// tradeCmd carries the flags shared by buy and sell.
type tradeCmd struct {
	signature string
	symbol    string
	amount    string
	date      string
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.signature, "a", "", "Agent signature, defaults to the session agent.")
	f.StringVar(&c.symbol, "s", "", "Symbol to trade, e.g. BTC-USDT.")
	f.StringVar(&c.amount, "q", "", "Quantity to trade, strictly positive.")
	f.StringVar(&c.date, "d", "", "Trade date, defaults to the session's trading day.")
}

// run validates and executes the order under the agent's lock.
func (c *tradeCmd) run(action string) subcommands.ExitStatus {
	flags := Flags()
	signature := c.signature
	if signature == "" {
		signature, _, _ = flags.Get(arena.KeySignature)
	}
	if signature == "" || c.symbol == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: agent, symbol and quantity are required.")
		return subcommands.ExitUsageError
	}

	on, err := sessionDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	archive, err := Archive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	ins, err := arena.ParseInstruction(action, c.symbol, c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	executor := arena.NewExecutor(Store(), archive)
	executor.Flags = flags
	snapshot, err := executor.Execute(signature, on, ins)
	if err != nil {
		if arena.IsTradeError(err) {
			fmt.Fprintln(os.Stderr, "Order rejected:", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		var unknown *arena.UnknownSymbolError
		if errors.As(err, &unknown) {
			fmt.Fprintf(os.Stderr, "Known symbols: %v\n", archive.Symbols())
		}
		return subcommands.ExitFailure
	}

	fmt.Printf("%s: %s\n", snapshot.Action, snapshot.Holdings)
	return subcommands.ExitSuccess
}

type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a quantity of a symbol at the day's open price" }
func (*buyCmd) Usage() string {
	return `wsoa buy -s <symbol> -q <quantity> [-a <agent>] [-d <date>]

  Buys at the day's open price. The order is rejected when the symbol has
  no open price for the day or CASH cannot cover the cost.
`
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(string(arena.BuyCrypto))
}

type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a quantity of a symbol at the day's close price" }
func (*sellCmd) Usage() string {
	return `wsoa sell -s <symbol> -q <quantity> [-a <agent>] [-d <date>]

  Sells at the day's close price. A missing close settles at price 0: the
  position is exited without proceeds. See 'wsoa topic trading'.
`
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(string(arena.SellCrypto))
}
