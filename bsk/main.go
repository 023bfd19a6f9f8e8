// Command bsk manages a basket portfolio from a JSONL ledger.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/basket/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Handles the shell completion requests, and exits if it was one.
	cmd.Completion().Complete("bsk")

	commander := subcommands.NewCommander(flag.CommandLine, "bsk")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
