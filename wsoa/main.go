package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/wsoa/arena/cmd"
)

func main() {
	// Shell completion runs first: when invoked by the shell's completion
	// hook it prints candidates and exits.
	sub := map[string]*complete.Command{}
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	completer := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"agents-dir":  predict.Dirs("*"),
			"prices-file": predict.Files("*.jsonl"),
			"flags-file":  predict.Files("*.json"),
		},
	}
	completer.Complete("wsoa")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
