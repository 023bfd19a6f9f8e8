package basket

import (
	"errors"
	"fmt"

	"github.com/etnz/basket/date"
)

// Validation errors. They are returned wrapped in a *ValidationError.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrTickerMismatch     = errors.New("ticker mismatch")
)

// ErrPriceUnavailable is the data error returned, wrapped in a *PriceError,
// when a price provider has no price for a security on a date.
var ErrPriceUnavailable = errors.New("price unavailable")

// ValidationError reports a transaction that could not be applied.
// Nothing of the transaction has been applied when it is returned.
type ValidationError struct {
	Tx  Transaction
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s transaction %s on %s: %v", e.Tx.What(), e.Tx.TxID(), e.Tx.When(), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PriceError reports a missing price.
type PriceError struct {
	Ticker string
	On     date.Date
	Err    error
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("price of %s on %s: %v", e.Ticker, e.On, e.Err)
}

func (e *PriceError) Unwrap() error { return e.Err }
