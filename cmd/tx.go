package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/basket"
	"github.com/etnz/basket/date"
	"github.com/google/subcommands"
)

// txCmd appends a transaction of a given order to the ledger.
type txCmd struct {
	order      basket.OrderType
	date       string
	ticker     string
	shares     string
	price      string
	commission string
	amount     string
}

func (c *txCmd) Name() string { return string(c.order) }

func (c *txCmd) cash() bool {
	return c.order == basket.OrderDeposit || c.order == basket.OrderWithdrawal
}

func (c *txCmd) Synopsis() string {
	switch c.order {
	case basket.OrderDeposit:
		return "credit cash to the account"
	case basket.OrderWithdrawal:
		return "debit cash from the account"
	case basket.OrderBuy:
		return "purchase shares to open or add to a long position"
	case basket.OrderSell:
		return "sell shares of a long position"
	case basket.OrderSellShort:
		return "sell borrowed shares to open or add to a short position"
	case basket.OrderBuyToCover:
		return "buy shares back to close a short position"
	case basket.OrderDividendReceipt:
		return "credit a cash dividend"
	default:
		return "reinvest a dividend into shares"
	}
}

func (c *txCmd) Usage() string {
	if c.cash() {
		return fmt.Sprintf(`bsk %s [-d <date>] -a <amount>

  Appends a %s to the ledger, if the portfolio accepts it.
`, c.order, c.order)
	}
	return fmt.Sprintf(`bsk %s [-d <date>] -t <ticker> -q <shares> -p <price> [-c <commission>]

  Appends a %s to the ledger, if the portfolio accepts it.
`, c.order, c.order)
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Execution date (YYYY-MM-DD)")
	if c.cash() {
		f.StringVar(&c.amount, "a", "", "Amount of cash")
		return
	}
	f.StringVar(&c.ticker, "t", "", "Security ticker")
	f.StringVar(&c.shares, "q", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share")
	f.StringVar(&c.commission, "c", "0", "Commission paid")
}

// transaction creates the transaction described by the flags.
func (c *txCmd) transaction(txf *basket.TransactionFactory) (basket.Transaction, error) {
	on, err := date.Parse(c.date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	cur := txf.Currency()
	if c.cash() {
		amount, err := basket.ParseMoney(c.amount, cur)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", c.amount, err)
		}
		if c.order == basket.OrderDeposit {
			return txf.NewDeposit(on, amount), nil
		}
		return txf.NewWithdrawal(on, amount), nil
	}

	if c.ticker == "" {
		return nil, fmt.Errorf("missing ticker")
	}
	shares, err := basket.ParseQuantity(c.shares)
	if err != nil {
		return nil, fmt.Errorf("invalid shares %q: %w", c.shares, err)
	}
	price, err := basket.ParseMoney(c.price, cur)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	commission, err := basket.ParseMoney(c.commission, cur)
	if err != nil {
		return nil, fmt.Errorf("invalid commission %q: %w", c.commission, err)
	}
	switch c.order {
	case basket.OrderBuy:
		return txf.NewBuy(on, c.ticker, shares, price, commission), nil
	case basket.OrderSell:
		return txf.NewSell(on, c.ticker, shares, price, commission), nil
	case basket.OrderSellShort:
		return txf.NewSellShort(on, c.ticker, shares, price, commission), nil
	case basket.OrderBuyToCover:
		return txf.NewBuyToCover(on, c.ticker, shares, price, commission), nil
	case basket.OrderDividendReceipt:
		return txf.NewDividendReceipt(on, c.ticker, shares, price, commission), nil
	case basket.OrderDividendReinvestment:
		return txf.NewDividendReinvestment(on, c.ticker, shares, price, commission), nil
	}
	return nil, fmt.Errorf("unknown order %q", c.order)
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := c.transaction(cfg.TransactionFactory())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		f.Usage()
		return subcommands.ExitUsageError
	}
	// The ledger only holds transactions the portfolio accepts.
	if err := p.AddTransaction(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return appendTransaction(*ledgerFile, tx)
}
