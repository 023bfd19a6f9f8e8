package basket

import (
	"fmt"

	"github.com/etnz/basket/date"
)

// Side is the direction of a holding.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// Holding is a lot of shares between its opening transaction and the
// closing transaction that matched it, or still open.
type Holding struct {
	Ticker     string
	Side       Side
	Shares     Quantity
	Opened     date.Date
	OpenTx     string
	OpenValue  Money // cost of a long lot, proceeds of a short one
	Closed     date.Date
	CloseTx    string
	CloseValue Money // proceeds of a long lot, cost of a short one
}

// IsOpen reports whether the holding has not been closed yet.
func (h Holding) IsOpen() bool { return h.CloseTx == "" }

// Gain returns the realized gain of a closed holding, zero for an open one.
func (h Holding) Gain() Money {
	if h.IsOpen() {
		return M(0, h.OpenValue.Currency())
	}
	if h.Side == Short {
		return h.OpenValue.Sub(h.CloseValue)
	}
	return h.CloseValue.Sub(h.OpenValue)
}

// lot is the unmatched part of an opening transaction.
type lot struct {
	side   Side
	on     date.Date
	tx     string
	shares Quantity
	value  Money
}

// allocate returns the part of value corresponding to take out of shares,
// rounded to the minor unit. Taking everything returns value unchanged, so
// that successive allocations add up to value exactly.
func allocate(value Money, take, shares Quantity) Money {
	if take.Equal(shares) {
		return value
	}
	return value.MulDiv(take, shares).Round()
}

// fifo matches the closing transactions of p up to a date against the oldest
// open lot of the same side.
//
// It returns the closed holdings in closing order followed by the open ones
// in opening order.
func fifo(p *Position, on date.Date) ([]Holding, error) {
	var (
		open   []*lot
		closed []Holding
	)
	for tx := range p.until(on) {
		var side Side
		switch tx.(type) {
		case Buy, DividendReinvestment:
			open = append(open, &lot{side: Long, on: p.basis.effective(tx), tx: tx.TxID(), shares: tx.Quantity(), value: tx.TotalValue()})
			continue
		case SellShort:
			open = append(open, &lot{side: Short, on: p.basis.effective(tx), tx: tx.TxID(), shares: tx.Quantity(), value: tx.TotalValue()})
			continue
		case Sell:
			side = Long
		case BuyToCover:
			side = Short
		default:
			continue
		}

		remaining, proceeds := tx.Quantity(), tx.TotalValue()
		for _, l := range open {
			if remaining.IsZero() {
				break
			}
			if l.side != side || l.shares.IsZero() {
				continue
			}
			take := Min(l.shares, remaining)
			openPart := allocate(l.value, take, l.shares)
			closePart := allocate(proceeds, take, remaining)
			closed = append(closed, Holding{
				Ticker:     p.ticker,
				Side:       side,
				Shares:     take,
				Opened:     l.on,
				OpenTx:     l.tx,
				OpenValue:  openPart,
				Closed:     p.basis.effective(tx),
				CloseTx:    tx.TxID(),
				CloseValue: closePart,
			})
			l.shares, l.value = l.shares.Sub(take), l.value.Sub(openPart)
			remaining, proceeds = remaining.Sub(take), proceeds.Sub(closePart)
		}
		if remaining.IsPositive() {
			return nil, fmt.Errorf("%w: %s %s of %s on %s, %s unmatched", ErrInsufficientShares, tx.What(), tx.Quantity(), p.ticker, p.basis.effective(tx), remaining)
		}
	}

	holdings := closed
	for _, l := range open {
		if l.shares.IsZero() {
			continue
		}
		holdings = append(holdings, Holding{
			Ticker:    p.ticker,
			Side:      l.side,
			Shares:    l.shares,
			Opened:    l.on,
			OpenTx:    l.tx,
			OpenValue: l.value,
		})
	}
	return holdings, nil
}
