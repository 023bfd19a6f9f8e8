// Package cmd implements the CLI application to manage a basket portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/basket"
	"github.com/etnz/basket/config"
	"github.com/google/subcommands"
)

// Commands returns every subcommand, grouped by topic.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"transactions": {
			&txCmd{order: basket.OrderDeposit},
			&txCmd{order: basket.OrderWithdrawal},
			&txCmd{order: basket.OrderBuy},
			&txCmd{order: basket.OrderSell},
			&txCmd{order: basket.OrderSellShort},
			&txCmd{order: basket.OrderBuyToCover},
			&txCmd{order: basket.OrderDividendReceipt},
			&txCmd{order: basket.OrderDividendReinvestment},
		},
		"reports": {
			&cashCmd{},
			&valueCmd{},
			&holdingsCmd{},
			&logCmd{},
			&kellyCmd{},
		},
		"ledger": {
			&checkCmd{},
		},
		"help": {
			&topicCmd{},
		},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "basket.yaml", "Path to the configuration file (YAML or JSON), ignored if missing")
var ledgerFile = flag.String("ledger", "ledger.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var pricesFile = flag.String("prices", "prices.jsonl", "Path to the daily closing prices (JSONL format)")

// loadConfig loads the configuration file, or the defaults when it does not exist.
func loadConfig() (*config.Config, error) {
	path := *configFile
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = ""
	}
	return config.Load(path)
}

// decodeLedger reads all transactions of the ledger file. A missing ledger is empty.
func decodeLedger() ([]basket.Transaction, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := basket.DecodeTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("decoding ledger %q: %w", *ledgerFile, err)
	}
	return txs, nil
}

// decodeMarketData reads the prices file. A missing file holds no price.
func decodeMarketData(currency string) (*basket.MarketData, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return basket.NewMarketData(currency), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := basket.DecodeMarketData(f, currency)
	if err != nil {
		return nil, fmt.Errorf("decoding prices %q: %w", *pricesFile, err)
	}
	return m, nil
}

// buildPortfolio replays txs on a new portfolio configured by cfg.
func buildPortfolio(cfg *config.Config, txs []basket.Transaction) (*basket.Portfolio, error) {
	logger, err := config.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	pf, err := cfg.PortfolioFactory(&logger)
	if err != nil {
		return nil, err
	}
	on, amount, ok, err := cfg.Opening()
	if err != nil {
		return nil, err
	}
	if ok {
		return pf.ConstructPortfolioWithOpeningDeposit(cfg.CashTicker, on, amount, slices.Values(txs))
	}
	return pf.ConstructPortfolioWithCashTicker(cfg.CashTicker, slices.Values(txs))
}

// loadPortfolio loads the configuration and replays the ledger.
func loadPortfolio() (*config.Config, *basket.Portfolio, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	txs, err := decodeLedger()
	if err != nil {
		return nil, nil, err
	}
	p, err := buildPortfolio(cfg, txs)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

// appendTransaction appends a transaction to the ledger file.
func appendTransaction(filename string, tx basket.Transaction) subcommands.ExitStatus {
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := basket.EncodeTransaction(f, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended transaction %s to %s\n", tx.TxID(), filename)
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw if rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
