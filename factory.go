package basket

import (
	"fmt"
	"iter"

	"github.com/etnz/basket/date"
	"github.com/rs/zerolog"
)

// Options configures new portfolios.
type Options struct {
	Currency string          // Currency of the cash account.
	Margin   MarginPolicy    // Margin policy of the cash account, MarginNotAllowed if nil.
	Basis    DateBasis       // Basis selects execution or settlement dates.
	Logger   *zerolog.Logger // Logger receives transaction logs, discarded if nil.
}

func (o Options) withDefaults() Options {
	if o.Margin == nil {
		o.Margin = MarginNotAllowed
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// PortfolioFactory builds portfolios by replaying transactions.
type PortfolioFactory struct {
	txf  *TransactionFactory
	opts Options
}

// NewPortfolioFactory returns a factory creating portfolios with opts.
//
// txf is used to synthesize opening deposits; if nil, one generating UUIDs in
// the options currency is used. An empty options currency takes the
// transaction factory one.
func NewPortfolioFactory(txf *TransactionFactory, opts Options) *PortfolioFactory {
	if txf == nil {
		txf = NewTransactionFactory(nil, opts.Currency)
	}
	if opts.Currency == "" {
		opts.Currency = txf.Currency()
	}
	return &PortfolioFactory{txf: txf, opts: opts.withDefaults()}
}

// Options returns the options of the portfolios built by f.
func (f *PortfolioFactory) Options() Options { return f.opts }

// ConstructPortfolio builds a portfolio without cash ticker.
func (f *PortfolioFactory) ConstructPortfolio(txs iter.Seq[Transaction]) (*Portfolio, error) {
	return f.Construct("", txs)
}

// ConstructPortfolioWithCashTicker builds a portfolio using cashTicker as its
// cash equivalent security.
func (f *PortfolioFactory) ConstructPortfolioWithCashTicker(cashTicker string, txs iter.Seq[Transaction]) (*Portfolio, error) {
	return f.Construct(cashTicker, txs)
}

// ConstructPortfolioWithOpeningDeposit builds a portfolio whose first
// transaction is a deposit of amount on a date.
func (f *PortfolioFactory) ConstructPortfolioWithOpeningDeposit(cashTicker string, on date.Date, amount Money, txs iter.Seq[Transaction]) (*Portfolio, error) {
	if txs == nil {
		panic("nil transaction sequence")
	}
	opening := f.txf.NewDeposit(on, amount)
	return f.Construct(cashTicker, func(yield func(Transaction) bool) {
		if !yield(opening) {
			return
		}
		for tx := range txs {
			if !yield(tx) {
				return
			}
		}
	})
}

// Construct builds a portfolio by applying txs in order.
//
// It panics if txs or any of its transactions is nil.
func (f *PortfolioFactory) Construct(cashTicker string, txs iter.Seq[Transaction]) (*Portfolio, error) {
	if txs == nil {
		panic("nil transaction sequence")
	}
	p := NewPortfolio(cashTicker, f.opts)
	n := 0
	for tx := range txs {
		if err := p.AddTransaction(tx); err != nil {
			return nil, fmt.Errorf("replaying transaction #%d: %w", n+1, err)
		}
		n++
	}
	f.opts.Logger.Info().Str("cash_ticker", cashTicker).Int("transactions", n).Msg("portfolio constructed")
	return p, nil
}
