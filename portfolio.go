package basket

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/basket/date"
	"github.com/rs/zerolog"
)

// Portfolio owns a cash account and one position per security ever traded.
//
// Writes are serialized by the portfolio. Reads can run concurrently with
// each other.
type Portfolio struct {
	mu         sync.RWMutex
	cashTicker string
	basis      DateBasis
	log        zerolog.Logger

	cash      *CashAccount
	positions map[string]*Position
	txs       []Transaction // in application order
	ids       map[string]struct{}
	journal   journal
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio(cashTicker string, opts Options) *Portfolio {
	opts = opts.withDefaults()
	return &Portfolio{
		cashTicker: cashTicker,
		basis:      opts.Basis,
		log:        opts.Logger.With().Str("cash_ticker", cashTicker).Logger(),
		cash:       NewCashAccount(opts.Currency, opts.Basis, opts.Margin),
		positions:  make(map[string]*Position),
		ids:        make(map[string]struct{}),
	}
}

// CashTicker returns the ticker of the cash equivalent security, possibly empty.
func (p *Portfolio) CashTicker() string { return p.cashTicker }

// Currency returns the portfolio currency.
func (p *Portfolio) Currency() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash.Currency()
}

// Basis returns the date basis of the ledgers.
func (p *Portfolio) Basis() DateBasis { return p.basis }

// AddTransaction applies tx to the cash account and to the position of its
// security.
//
// It is all or nothing: on error the portfolio is left unchanged and the
// error is a *ValidationError.
func (p *Portfolio) AddTransaction(tx Transaction) error {
	if tx == nil {
		panic("nil transaction")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := p.log.Debug()
	if err := p.apply(tx); err != nil {
		ev = p.log.Warn().Err(err)
		logTx(ev, tx).Msg("transaction rejected")
		return err
	}
	logTx(ev, tx).Msg("transaction applied")
	return nil
}

func logTx(ev *zerolog.Event, tx Transaction) *zerolog.Event {
	ev = ev.Str("tx", tx.TxID()).Str("order", string(tx.What())).Stringer("on", tx.When())
	if s, ok := tx.(ShareTransaction); ok {
		ev = ev.Str("ticker", s.Security())
	}
	return ev
}

// AvailableCash returns the cash available on a date.
func (p *Portfolio) AvailableCash(on date.Date) Money {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash.AvailableCashAt(on)
}

// CashAccount returns a snapshot of the cash account. Writing to it does not
// change the portfolio.
func (p *Portfolio) CashAccount() *CashAccount {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash.clone()
}

// Position returns a snapshot of the position of a security, if any
// transaction was ever applied to it. Writing to it does not change the
// portfolio.
func (p *Portfolio) Position(ticker string) (*Position, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[ticker]
	if !ok {
		return nil, false
	}
	return pos.clone(), true
}

// Positions returns an iterator over snapshots of the positions sorted by ticker.
func (p *Portfolio) Positions() iter.Seq[*Position] {
	p.mu.RLock()
	tickers := slices.Sorted(maps.Keys(p.positions))
	positions := make([]*Position, 0, len(tickers))
	for _, t := range tickers {
		positions = append(positions, p.positions[t].clone())
	}
	p.mu.RUnlock()
	return slices.Values(positions)
}

// Transactions returns an iterator over every applied transaction, in application order.
func (p *Portfolio) Transactions() iter.Seq[Transaction] {
	p.mu.RLock()
	txs := slices.Clone(p.txs)
	p.mu.RUnlock()
	return slices.Values(txs)
}

// Events returns an iterator over the sub-ledger writes, in application order.
func (p *Portfolio) Events() iter.Seq[Event] {
	p.mu.RLock()
	j := journal{events: slices.Clone(p.journal.events)}
	p.mu.RUnlock()
	return j.all()
}

// TotalValue returns the available cash plus the market value of every position on a date.
func (p *Portfolio) TotalValue(prices PriceProvider, on date.Date) (Money, error) {
	return NewCalculator(prices).TotalValue(p, on)
}

// InvestedValue returns the FIFO cost of the shares held on a date, over every position.
func (p *Portfolio) InvestedValue(on date.Date) (Money, error) {
	return NewCalculator(nil).TotalInvestedValue(p, on)
}
