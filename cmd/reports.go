package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/basket"
	"github.com/etnz/basket/analytics"
	"github.com/etnz/basket/date"
	"github.com/etnz/basket/renderer"
	"github.com/google/subcommands"
)

// parseDate parses a date flag, printing the error.
func parseDate(s string) (date.Date, bool) {
	on, err := date.Parse(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return on, false
	}
	return on, true
}

// holdingsOf collects the FIFO lots of every position of p on a date.
func holdingsOf(p *basket.Portfolio, on date.Date) ([]basket.Holding, error) {
	c := basket.NewCalculator(nil)
	var all []basket.Holding
	for pos := range p.Positions() {
		hs, err := c.Holdings(pos, on)
		if err != nil {
			return nil, fmt.Errorf("holdings of %s: %w", pos.Ticker(), err)
		}
		all = append(all, hs...)
	}
	return all, nil
}

// --- Cash Command ---

type cashCmd struct {
	date string
}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "display the available cash on a date" }
func (*cashCmd) Usage() string {
	return `bsk cash [-d <date>]

  Prints the cash balance after every transaction effective on or before the date.
`
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the balance (YYYY-MM-DD)")
}

func (c *cashCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ok := parseDate(c.date)
	if !ok {
		return subcommands.ExitUsageError
	}
	_, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\t%s\n", on, p.AvailableCash(on))
	return subcommands.ExitSuccess
}

// --- Value Command ---

type valueCmd struct {
	date string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "display the valuation of the portfolio on a date" }
func (*valueCmd) Usage() string {
	return `bsk value [-d <date>]

  Values every position at its last closing price on or before the date, and
  prints the cash, market value, gains and total value.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the valuation (YYYY-MM-DD)")
}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ok := parseDate(c.date)
	if !ok {
		return subcommands.ExitUsageError
	}
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
	report, err := basket.NewValuationReport(p, market, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating valuation report: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderValuation(report))
	return subcommands.ExitSuccess
}

// --- Holdings Command ---

type holdingsCmd struct {
	date string
	open bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the FIFO lots of every position" }
func (*holdingsCmd) Usage() string {
	return `bsk holdings [-d <date>] [-open]

  Lists every lot, long or short, with its opening and closing values.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the holdings (YYYY-MM-DD)")
	f.BoolVar(&c.open, "open", false, "list only the open lots")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ok := parseDate(c.date)
	if !ok {
		return subcommands.ExitUsageError
	}
	_, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	holdings, err := holdingsOf(p, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.open {
		holdings = slices.DeleteFunc(holdings, func(h basket.Holding) bool { return !h.IsOpen() })
	}
	printMarkdown(renderer.RenderHoldings(on, holdings))
	return subcommands.ExitSuccess
}

// --- Log Command ---

type logCmd struct {
	tail int
}

func (*logCmd) Name() string { return "log" }
func (*logCmd) Synopsis() string {
	return "display the journal of cash and position writes"
}
func (*logCmd) Usage() string {
	return `bsk log [-tail <n>]

  Replays the ledger and lists every write to the cash account and to the
  positions, in the order they were made.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.tail, "tail", 0, "Show only the last N events.")
}

func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	events := slices.Collect(p.Events())
	if c.tail > 0 && len(events) > c.tail {
		events = events[len(events)-c.tail:]
	}
	printMarkdown(renderer.RenderLog(events))
	return subcommands.ExitSuccess
}

// --- Kelly Command ---

type kellyCmd struct {
	date string
}

func (*kellyCmd) Name() string     { return "kelly" }
func (*kellyCmd) Synopsis() string { return "display trading statistics of the closed lots" }
func (*kellyCmd) Usage() string {
	return `bsk kelly [-d <date>]

  Computes the win rate, the payoff ratio and the Kelly fraction of the lots
  closed on or before the date.
`
}

func (c *kellyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the statistics (YYYY-MM-DD)")
}

func (c *kellyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, ok := parseDate(c.date)
	if !ok {
		return subcommands.ExitUsageError
	}
	_, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	holdings, err := holdingsOf(p, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSummary(on, analytics.Summarize(holdings)))
	return subcommands.ExitSuccess
}
