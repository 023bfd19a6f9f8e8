package basket

import (
	"errors"
	"fmt"

	"github.com/etnz/basket/date"
)

// OrderType is a typed string for identifying transaction variants.
type OrderType string

// Order types, one per transaction variant.
const (
	OrderDeposit              OrderType = "deposit"
	OrderWithdrawal           OrderType = "withdrawal"
	OrderBuy                  OrderType = "buy"
	OrderSell                 OrderType = "sell"
	OrderSellShort            OrderType = "sell-short"
	OrderBuyToCover           OrderType = "buy-to-cover"
	OrderDividendReceipt      OrderType = "dividend-receipt"
	OrderDividendReinvestment OrderType = "dividend-reinvestment"
)

// Transaction is an immutable record of a financial event.
//
// The set of transactions is closed: only the types of this package
// implement it.
type Transaction interface {
	TxID() string          // TxID returns the unique identifier of the transaction.
	What() OrderType       // What returns the order type of the transaction (e.g., "buy", "sell").
	When() date.Date       // When returns the execution date.
	SettledOn() date.Date  // SettledOn returns the settlement date.
	TotalValue() Money     // TotalValue returns the absolute cash value of the transaction.
	Validate() error       // Validate checks the transaction fields.
	isTransaction()
}

// ShareTransaction is a Transaction on a security.
type ShareTransaction interface {
	Transaction
	Security() string       // Security returns the ticker.
	Quantity() Quantity     // Quantity returns the number of shares, always positive.
	PricePerShare() Money   // PricePerShare returns the price of one share.
	Fee() Money             // Fee returns the commission.
}

// DateBasis selects which date of a transaction ledgers order by and compare against.
type DateBasis int

const (
	// ExecutionBasis uses the execution date.
	ExecutionBasis DateBasis = iota
	// SettlementBasis uses the settlement date.
	SettlementBasis
)

func (b DateBasis) String() string {
	switch b {
	case ExecutionBasis:
		return "execution"
	case SettlementBasis:
		return "settlement"
	default:
		return "unknown"
	}
}

// ParseDateBasis parses a string into a DateBasis.
func ParseDateBasis(s string) (DateBasis, error) {
	switch s {
	case "", "execution":
		return ExecutionBasis, nil
	case "settlement":
		return SettlementBasis, nil
	default:
		return 0, fmt.Errorf("unknown date basis: %q", s)
	}
}

// effective returns the date tx takes effect on for this basis.
func (b DateBasis) effective(tx Transaction) date.Date {
	if b == SettlementBasis && !tx.SettledOn().IsZero() {
		return tx.SettledOn()
	}
	return tx.When()
}

// baseTx holds the attributes common to all transactions.
type baseTx struct {
	ID       string    `json:"id"`       // ID is the unique identifier of the transaction.
	Order    OrderType `json:"order"`    // Order is the variant tag.
	Executed date.Date `json:"executed"` // Executed is the execution date.
	Settled  date.Date `json:"settled"`  // Settled is the settlement date.
}

func (t baseTx) TxID() string         { return t.ID }
func (t baseTx) What() OrderType      { return t.Order }
func (t baseTx) When() date.Date      { return t.Executed }
func (t baseTx) SettledOn() date.Date { return t.Settled }
func (baseTx) isTransaction()         {}

// validate checks the base fields.
func (t baseTx) validate() error {
	if t.ID == "" {
		return errors.New("transaction id is missing")
	}
	if t.Executed.IsZero() {
		return errors.New("execution date is missing")
	}
	if !t.Settled.IsZero() && t.Settled.Before(t.Executed) {
		return fmt.Errorf("settlement date %s is before execution date %s", t.Settled, t.Executed)
	}
	return nil
}

// cashTx is the component of cash only transactions (deposit, withdrawal).
type cashTx struct {
	baseTx
	Amount Money // Amount is the cash moved, always positive.
}

func (t cashTx) TotalValue() Money { return t.Amount }

func (t cashTx) validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%s amount must be positive, got %s", t.Order, t.Amount.Exact())
	}
	return nil
}

// shareTx is the component for security-based transactions.
type shareTx struct {
	baseTx
	Ticker     string   // Ticker is the symbol of the security involved in the transaction.
	Shares     Quantity // Shares is the number of shares, always positive.
	Price      Money    // Price is the price of one share.
	Commission Money    // Commission is the brokerage fee.
}

func (t shareTx) Security() string     { return t.Ticker }
func (t shareTx) Quantity() Quantity   { return t.Shares }
func (t shareTx) PricePerShare() Money { return t.Price }
func (t shareTx) Fee() Money           { return t.Commission }

// gross returns shares × price.
func (t shareTx) gross() Money { return t.Price.Mul(t.Shares) }

// outflow is the total value of a transaction that costs cash.
func (t shareTx) outflow() Money { return t.gross().Add(t.Commission) }

// inflow is the total value of a transaction that brings cash.
func (t shareTx) inflow() Money { return t.gross().Sub(t.Commission) }

// currency returns the currency of the amounts, empty if none is set.
func (t shareTx) currency() (string, error) {
	p, c := t.Price.Currency(), t.Commission.Currency()
	if p != "" && c != "" && p != c {
		return "", fmt.Errorf("%s price in %s and commission in %s", t.Order, p, c)
	}
	if p == "" {
		return c, nil
	}
	return p, nil
}

// validate checks the fields, total is only computed once the currencies agree.
func (t shareTx) validate(total func() Money) error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if _, err := t.currency(); err != nil {
		return err
	}
	if t.Ticker == "" {
		return errors.New("security ticker is missing")
	}
	if !t.Shares.IsPositive() {
		return fmt.Errorf("%s shares must be positive, got %s", t.Order, t.Shares)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%s price must not be negative, got %s", t.Order, t.Price.Exact())
	}
	if t.Commission.IsNegative() {
		return fmt.Errorf("%s commission must not be negative, got %s", t.Order, t.Commission.Exact())
	}
	if v := total(); v.IsNegative() {
		return fmt.Errorf("%s total value must not be negative, got %s", t.Order, v.Exact())
	}
	return nil
}

// Deposit adds cash to the account.
type Deposit struct{ cashTx }

// Validate checks the deposit amount is positive.
func (t Deposit) Validate() error { return invalid(t, t.cashTx.validate()) }

// Withdrawal removes cash from the account.
type Withdrawal struct{ cashTx }

// Validate checks the withdrawal amount is positive.
func (t Withdrawal) Validate() error { return invalid(t, t.cashTx.validate()) }

// Buy opens or adds to a long position.
type Buy struct{ shareTx }

// TotalValue returns the total cost, shares × price + commission.
func (t Buy) TotalValue() Money { return t.outflow() }
func (t Buy) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// Sell closes or reduces a long position.
type Sell struct{ shareTx }

// TotalValue returns the proceeds, shares × price − commission.
func (t Sell) TotalValue() Money { return t.inflow() }
func (t Sell) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// SellShort opens or adds to a short position.
type SellShort struct{ shareTx }

// TotalValue returns the proceeds, shares × price − commission.
func (t SellShort) TotalValue() Money { return t.inflow() }
func (t SellShort) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// BuyToCover closes or reduces a short position.
type BuyToCover struct{ shareTx }

// TotalValue returns the total cost, shares × price + commission.
func (t BuyToCover) TotalValue() Money { return t.outflow() }
func (t BuyToCover) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// DividendReceipt is a dividend paid in cash. The ticker is informational.
type DividendReceipt struct{ shareTx }

// TotalValue returns the cash received, shares × price − commission.
func (t DividendReceipt) TotalValue() Money { return t.inflow() }
func (t DividendReceipt) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// DividendReinvestment spends a dividend on new shares of the security.
type DividendReinvestment struct{ shareTx }

// TotalValue returns the cash reinvested, shares × price + commission.
func (t DividendReinvestment) TotalValue() Money { return t.outflow() }
func (t DividendReinvestment) Validate() error   { return invalid(t, t.validate(t.TotalValue)) }

// currencyOf returns the currency of the amounts of tx, empty if none is set.
func currencyOf(tx Transaction) string {
	switch tx := tx.(type) {
	case Deposit:
		return tx.Amount.Currency()
	case Withdrawal:
		return tx.Amount.Currency()
	case interface{ currency() (string, error) }:
		c, _ := tx.currency()
		return c
	}
	return ""
}

// invalid wraps a validation failure into a ValidationError.
func invalid(tx Transaction, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Tx: tx, Err: fmt.Errorf("%w: %w", ErrInvalidTransaction, err)}
}
