package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/wsoa/arena"
)

type fmtCmd struct {
	signature string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and rewrites position logs in canonical form"
}
func (*fmtCmd) Usage() string {
	return `wsoa fmt [-a <agent>]

  Reads each agent's position log, validates it, and rewrites it sorted by
  (date, id) with fields in canonical order. By default all agents are
  formatted; -a restricts to one.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.signature, "a", "", "Agent to format. Formats all by default.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := Store()

	sigs := []string{c.signature}
	if c.signature == "" {
		var err error
		sigs, err = store.Signatures()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not list agents: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if len(sigs) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no agents found to format.")
		return subcommands.ExitSuccess
	}

	status := subcommands.ExitSuccess
	for _, sig := range sigs {
		if err := formatLedger(store, sig); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting %q: %v\n", sig, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(os.Stderr, "Formatted ledger of %q.\n", sig)
	}
	return status
}

// formatLedger rewrites one position log atomically: decode, re-encode to
// a sibling temp file, rename over the original.
func formatLedger(store *arena.Store, signature string) error {
	ledger, err := store.Ledger(signature)
	if err != nil {
		return err
	}
	path := filepath.Join(*agentsDir, signature, "position.jsonl")

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fmt-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var snapshots []arena.Snapshot
	for _, s := range ledger.Snapshots() {
		snapshots = append(snapshots, s)
	}
	if err := arena.EncodeSnapshots(tmp, snapshots); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
