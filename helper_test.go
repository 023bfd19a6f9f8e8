package basket

import (
	"github.com/etnz/basket/date"
	"github.com/google/go-cmp/cmp"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// day is a helper for test to create a date from a literal.
func day(s string) date.Date { return date.MustParse(s) }

// cmpOpts compares the value types of this package by value.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}

// newTestFactory returns a transaction factory with deterministic ids.
func newTestFactory() *TransactionFactory {
	return NewTransactionFactory(Sequence("tx"), "USD")
}
