package basket

import (
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/basket/date"
)

// Position is the ledger of share transactions on a single security.
//
// The ledger is sorted by effective date. Transactions on the same date
// keep their insertion order: this is a choice, it matters only for FIFO
// matching of same-day opens and closes.
//
// Every quantity is derived from the ledger on demand, nothing is cached.
type Position struct {
	ticker string
	basis  DateBasis
	txs    []ShareTransaction
}

// NewPosition creates an empty position.
func NewPosition(ticker string, basis DateBasis) *Position {
	return &Position{ticker: ticker, basis: basis}
}

// clone returns a copy of p that does not share its ledger.
func (p *Position) clone() *Position {
	return &Position{ticker: p.ticker, basis: p.basis, txs: slices.Clone(p.txs)}
}

// Ticker returns the security of this position.
func (p *Position) Ticker() string { return p.ticker }

// Len returns the number of transactions in the ledger.
func (p *Position) Len() int { return len(p.txs) }

// AddTransaction inserts tx in the ledger.
//
// The running balance is not validated, a Portfolio checks it first.
func (p *Position) AddTransaction(tx ShareTransaction) error {
	if tx.Security() != p.ticker {
		return fmt.Errorf("%w: cannot add %s to position %s", ErrTickerMismatch, tx.Security(), p.ticker)
	}
	p.txs = slices.Insert(p.txs, p.insertionIndex(tx), tx)
	return nil
}

// insertionIndex returns the index after every transaction effective on or before tx.
func (p *Position) insertionIndex(tx Transaction) int {
	on := p.basis.effective(tx)
	i := len(p.txs)
	for i > 0 && on.Before(p.basis.effective(p.txs[i-1])) {
		i--
	}
	return i
}

// Transactions returns an iterator over the ledger in chronological order.
func (p *Position) Transactions() iter.Seq[ShareTransaction] {
	return slices.Values(p.txs)
}

// until returns an iterator over the transactions effective on or before on.
func (p *Position) until(on date.Date) iter.Seq[ShareTransaction] {
	return func(yield func(ShareTransaction) bool) {
		for _, tx := range p.txs {
			if p.basis.effective(tx).After(on) {
				// The ledger is sorted, so it's safe to return.
				return
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// deltas returns the change of the long and short books caused by tx.
func deltas(tx ShareTransaction) (long, short Quantity) {
	switch tx.(type) {
	case Buy, DividendReinvestment:
		return tx.Quantity(), short
	case Sell:
		return tx.Quantity().Neg(), short
	case SellShort:
		return long, tx.Quantity()
	case BuyToCover:
		return long, tx.Quantity().Neg()
	}
	// DividendReceipt does not change shares.
	return long, short
}

// books returns the long and short share counts on a date.
func (p *Position) books(on date.Date) (long, short Quantity) {
	for tx := range p.until(on) {
		l, s := deltas(tx)
		long, short = long.Add(l), short.Add(s)
	}
	return long, short
}

// SharesHeldAt returns the net number of shares held on a date: positive
// for a net long position, negative for a net short one.
func (p *Position) SharesHeldAt(on date.Date) Quantity {
	long, short := p.books(on)
	return long.Sub(short)
}

// LongSharesAt returns the shares of the long book on a date.
func (p *Position) LongSharesAt(on date.Date) Quantity {
	long, _ := p.books(on)
	return long
}

// ShortSharesAt returns the shares sold short and not yet covered on a date, as a positive number.
func (p *Position) ShortSharesAt(on date.Date) Quantity {
	_, short := p.books(on)
	return short
}

// CostBasisAt returns the cash committed to the position net of proceeds,
// for all transactions on or before on.
func (p *Position) CostBasisAt(on date.Date) Money {
	var basis Money
	for tx := range p.until(on) {
		switch tx.(type) {
		case Buy, BuyToCover, DividendReinvestment:
			basis = basis.Add(tx.TotalValue())
		case Sell, SellShort:
			basis = basis.Sub(tx.TotalValue())
		}
	}
	return basis
}

// checkClose verifies that closing tx would not take the long (Sell) or the
// short (BuyToCover) book below zero, neither on its date nor on any later
// date of the ledger.
func (p *Position) checkClose(tx ShareTransaction) error {
	dl, ds := deltas(tx)
	on := p.basis.effective(tx)
	// running books, including tx at its insertion point.
	var long, short Quantity
	at := p.insertionIndex(tx)
	check := func(when date.Date) error {
		if long.IsNegative() {
			return fmt.Errorf("%w: on %s, cannot sell %s of %s, long position would be %s", ErrInsufficientShares, when, tx.Quantity(), p.ticker, long)
		}
		if short.IsNegative() {
			return fmt.Errorf("%w: on %s, cannot cover %s of %s, short position would be %s", ErrInsufficientShares, when, tx.Quantity(), p.ticker, short)
		}
		return nil
	}
	for i, cur := range p.txs {
		if i == at {
			long, short = long.Add(dl), short.Add(ds)
			if err := check(on); err != nil {
				return err
			}
		}
		l, s := deltas(cur)
		long, short = long.Add(l), short.Add(s)
		if i >= at {
			if err := check(p.basis.effective(cur)); err != nil {
				return err
			}
		}
	}
	if at == len(p.txs) {
		long, short = long.Add(dl), short.Add(ds)
		return check(on)
	}
	return nil
}
