package basket

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money from a value and an ISO currency code.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses an exact decimal string into a Money.
func ParseMoney(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d, cur: currency}, nil
}

// currency returns the money's currency definition.
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// Fraction returns the number of digits of the currency's minor unit.
func (m Money) Fraction() int32 {
	if m.cur == "" {
		return 2
	}
	return int32(m.currency().Fraction)
}

// Round returns the money rounded to the currency's minor unit, half away from zero.
func (m Money) Round() Money {
	return Money{value: m.value.Round(m.Fraction()), cur: m.cur}
}

// String returns the string representation of the money value, rounded to the minor unit.
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Exact returns the money value with all its digits, without currency symbol.
func (m Money) Exact() string { return m.value.String() }

// Decimal returns the underlying value in major unit.
func (m Money) Decimal() decimal.Decimal { return m.value }

// Simple wrapper around decimal.Decimal

func (m Money) Currency() string                { return m.cur }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur} }

// MulDiv returns m*num/den computed in a single step to limit precision loss.
func (m Money) MulDiv(num, den Quantity) Money {
	return Money{value: m.value.Mul(num.value).Div(den.value), cur: m.cur}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// MarshalJSON writes the exact value as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) { return m.value.MarshalJSON() }
