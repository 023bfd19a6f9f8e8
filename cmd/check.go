package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "replay the ledger and report the price coverage" }
func (*checkCmd) Usage() string {
	return `bsk check

  Replays every transaction of the ledger, stopping at the first rejected one,
  then lists the dates covered by the prices of every held ticker.
`
}

func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	market, err := decodeMarketData(cfg.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	n := 0
	for range p.Transactions() {
		n++
	}
	fmt.Printf("%s: %d transactions applied\n", *ledgerFile, n)

	status := subcommands.ExitSuccess
	for pos := range p.Positions() {
		r, ok := market.Coverage(pos.Ticker())
		if !ok {
			fmt.Printf("%s\tno price\n", pos.Ticker())
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s\t%s (%d days)\n", pos.Ticker(), r, r.Days())
	}
	return status
}
