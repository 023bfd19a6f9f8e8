package basket

import (
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/basket/date"
)

// MarginPolicy decides whether a cash balance is acceptable.
type MarginPolicy interface {
	Allows(balance Money) bool
}

type marginNotAllowed struct{}

func (marginNotAllowed) Allows(balance Money) bool { return !balance.IsNegative() }
func (marginNotAllowed) String() string            { return "no margin" }

// MarginNotAllowed is the default policy: cash never goes below zero.
var MarginNotAllowed MarginPolicy = marginNotAllowed{}

type marginLimit struct{ limit Money }

func (m marginLimit) Allows(balance Money) bool { return !balance.Add(m.limit).IsNegative() }
func (m marginLimit) String() string            { return "margin up to " + m.limit.String() }

// MarginLimit allows the cash balance to go down to -limit.
func MarginLimit(limit Money) MarginPolicy { return marginLimit{limit: limit} }

// CashEntry is a signed movement of the cash account.
type CashEntry struct {
	On     date.Date
	Amount Money  // positive for credits, negative for debits
	Source string // id of the transaction that caused it
}

// CashAccount is the ledger of cash movements.
type CashAccount struct {
	currency string
	basis    DateBasis
	margin   MarginPolicy
	entries  []CashEntry
}

// NewCashAccount creates an empty cash account. A nil margin policy means MarginNotAllowed.
// An account without currency takes the currency of its first entry.
func NewCashAccount(currency string, basis DateBasis, margin MarginPolicy) *CashAccount {
	if margin == nil {
		margin = MarginNotAllowed
	}
	return &CashAccount{currency: currency, basis: basis, margin: margin}
}

// clone returns a copy of c that does not share its entries.
func (c *CashAccount) clone() *CashAccount {
	cp := *c
	cp.entries = slices.Clone(c.entries)
	return &cp
}

// Currency returns the account currency.
func (c *CashAccount) Currency() string { return c.currency }

// Basis returns the date basis the account was created with.
func (c *CashAccount) Basis() DateBasis { return c.basis }

// Margin returns the account margin policy.
func (c *CashAccount) Margin() MarginPolicy { return c.margin }

// Deposit credits amount on a date.
func (c *CashAccount) Deposit(on date.Date, amount Money, source string) {
	c.insert(CashEntry{On: on, Amount: amount, Source: source})
}

// Withdraw debits amount on a date. It fails with ErrInsufficientFunds, and
// leaves the account unchanged, if the balance would breach the margin policy.
func (c *CashAccount) Withdraw(on date.Date, amount Money, source string) error {
	if err := c.checkWithdraw(on, amount); err != nil {
		return err
	}
	c.insert(CashEntry{On: on, Amount: amount.Neg(), Source: source})
	return nil
}

// checkWithdraw verifies the running balance after a debit of amount on a
// date, and at every later entry, is allowed by the margin policy.
func (c *CashAccount) checkWithdraw(on date.Date, amount Money) error {
	balance := c.AvailableCashAt(on).Sub(amount)
	if !c.margin.Allows(balance) {
		return fmt.Errorf("%w: on %s, cannot withdraw %s, balance would be %s", ErrInsufficientFunds, on, amount, balance)
	}
	for _, e := range c.entries[c.index(on):] {
		balance = balance.Add(e.Amount)
		if !c.margin.Allows(balance) {
			return fmt.Errorf("%w: on %s, cannot withdraw %s, balance would be %s on %s", ErrInsufficientFunds, on, amount, balance, e.On)
		}
	}
	return nil
}

// index returns the index after every entry on or before on.
func (c *CashAccount) index(on date.Date) int {
	i := len(c.entries)
	for i > 0 && on.Before(c.entries[i-1].On) {
		i--
	}
	return i
}

func (c *CashAccount) insert(e CashEntry) {
	if c.currency == "" {
		c.currency = e.Amount.Currency()
	}
	if e.Amount.Currency() == "" {
		e.Amount = M(e.Amount.Decimal(), c.currency)
	}
	c.entries = slices.Insert(c.entries, c.index(e.On), e)
}

// AvailableCashAt returns the sum of all entries on or before on.
func (c *CashAccount) AvailableCashAt(on date.Date) Money {
	total := M(0, c.currency)
	for _, e := range c.entries {
		if e.On.After(on) {
			break
		}
		total = total.Add(e.Amount)
	}
	return total
}

// Entries returns an iterator over the entries in chronological order.
func (c *CashAccount) Entries() iter.Seq[CashEntry] { return slices.Values(c.entries) }

// Len returns the number of entries.
func (c *CashAccount) Len() int { return len(c.entries) }
