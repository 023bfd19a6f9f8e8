package basket

import (
	"fmt"
)

// step is a single sub-ledger write. check must not mutate anything, commit
// must not fail once check succeeded.
type step struct {
	event  Event
	check  func() error
	commit func()
}

// plan returns the ordered writes that apply tx to the portfolio.
//
// Opening transactions move cash first then shares, closing transactions
// move shares first then cash. The caller holds the write lock.
func (p *Portfolio) plan(tx Transaction) []step {
	switch tx := tx.(type) {
	case Deposit:
		return []step{p.credit(tx)}
	case Withdrawal:
		return []step{p.debit(tx)}
	case DividendReceipt:
		return []step{p.credit(tx)}
	case DividendReinvestment:
		if tx.Security() == p.cashTicker {
			// the paired receipt has already credited the cash.
			return []step{p.skip(tx)}
		}
		return []step{p.debit(tx), p.open(tx, EventOpenLong)}
	case Buy:
		return []step{p.debit(tx), p.open(tx, EventOpenLong)}
	case SellShort:
		return []step{p.credit(tx), p.open(tx, EventOpenShort)}
	case Sell:
		return []step{p.close(tx, EventCloseLong), p.credit(tx)}
	case BuyToCover:
		return []step{p.close(tx, EventCloseShort), p.debit(tx)}
	default:
		panic(fmt.Sprintf("unhandled transaction type %T", tx))
	}
}

func (p *Portfolio) cashEvent(kind EventKind, tx Transaction) Event {
	e := Event{Kind: kind, TxID: tx.TxID(), On: p.basis.effective(tx), Amount: tx.TotalValue()}
	if s, ok := tx.(ShareTransaction); ok {
		e.Ticker = s.Security()
	}
	return e
}

func (p *Portfolio) shareEvent(kind EventKind, tx ShareTransaction) Event {
	return Event{
		Kind:   kind,
		TxID:   tx.TxID(),
		On:     p.basis.effective(tx),
		Ticker: tx.Security(),
		Shares: tx.Quantity(),
		Amount: tx.TotalValue(),
	}
}

func (p *Portfolio) credit(tx Transaction) step {
	e := p.cashEvent(EventCreditCash, tx)
	return step{
		event:  e,
		check:  func() error { return nil },
		commit: func() { p.cash.Deposit(e.On, e.Amount, e.TxID) },
	}
}

func (p *Portfolio) debit(tx Transaction) step {
	e := p.cashEvent(EventDebitCash, tx)
	return step{
		event: e,
		check: func() error { return p.cash.checkWithdraw(e.On, e.Amount) },
		commit: func() {
			if err := p.cash.Withdraw(e.On, e.Amount, e.TxID); err != nil {
				panic(fmt.Sprintf("withdraw failed after a successful check: %v", err))
			}
		},
	}
}

func (p *Portfolio) open(tx ShareTransaction, kind EventKind) step {
	return step{
		event:  p.shareEvent(kind, tx),
		check:  func() error { return nil },
		commit: func() { p.add(tx) },
	}
}

func (p *Portfolio) close(tx ShareTransaction, kind EventKind) step {
	return step{
		event: p.shareEvent(kind, tx),
		check: func() error {
			pos, ok := p.positions[tx.Security()]
			if !ok {
				pos = NewPosition(tx.Security(), p.basis)
			}
			return pos.checkClose(tx)
		},
		commit: func() { p.add(tx) },
	}
}

func (p *Portfolio) skip(tx ShareTransaction) step {
	return step{
		event:  p.shareEvent(EventSkipReinvestment, tx),
		check:  func() error { return nil },
		commit: func() {},
	}
}

// add appends tx to the position of its ticker, creating it if needed.
func (p *Portfolio) add(tx ShareTransaction) {
	pos, ok := p.positions[tx.Security()]
	if !ok {
		pos = NewPosition(tx.Security(), p.basis)
		p.positions[tx.Security()] = pos
	}
	if err := pos.AddTransaction(tx); err != nil {
		panic(err) // positions are keyed by ticker.
	}
}

// apply validates tx, checks every step, then commits them all.
func (p *Portfolio) apply(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if c, want := currencyOf(tx), p.cash.Currency(); c != "" && want != "" && c != want {
		return invalid(tx, fmt.Errorf("currency %s differs from the portfolio currency %s", c, want))
	}
	if _, exists := p.ids[tx.TxID()]; exists {
		return invalid(tx, fmt.Errorf("duplicate transaction id %q", tx.TxID()))
	}
	steps := p.plan(tx)
	for _, s := range steps {
		if err := s.check(); err != nil {
			return &ValidationError{Tx: tx, Err: err}
		}
	}
	for _, s := range steps {
		s.commit()
		p.journal.record(s.event)
	}
	p.ids[tx.TxID()] = struct{}{}
	p.txs = append(p.txs, tx)
	return nil
}
