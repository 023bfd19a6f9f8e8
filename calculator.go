package basket

import (
	"github.com/etnz/basket/date"
)

// Calculator values positions and portfolios against a price provider.
type Calculator struct {
	prices PriceProvider
}

// NewCalculator returns a calculator using prices. A nil provider has no price at all.
func NewCalculator(prices PriceProvider) *Calculator {
	return &Calculator{prices: prices}
}

// Price returns the price of one share of ticker on a date.
func (c *Calculator) Price(ticker string, on date.Date) (Money, error) {
	if c.prices == nil {
		return Money{}, &PriceError{Ticker: ticker, On: on, Err: ErrPriceUnavailable}
	}
	return c.prices.Price(ticker, on)
}

// MarketValue returns the shares held on a date times their price. It is
// negative for a net short position.
//
// A position without shares is not priced and is worth zero.
func (c *Calculator) MarketValue(p *Position, on date.Date) (Money, error) {
	shares := p.SharesHeldAt(on)
	if shares.IsZero() {
		return Money{}, nil
	}
	price, err := c.Price(p.Ticker(), on)
	if err != nil {
		return Money{}, err
	}
	return price.Mul(shares), nil
}

// Holdings returns the FIFO lots of a position on a date.
func (c *Calculator) Holdings(p *Position, on date.Date) ([]Holding, error) {
	return fifo(p, on)
}

// InvestedValue returns the FIFO cost of the shares held on a date: the cost
// of the open long lots minus the proceeds of the open short lots.
func (c *Calculator) InvestedValue(p *Position, on date.Date) (Money, error) {
	holdings, err := fifo(p, on)
	if err != nil {
		return Money{}, err
	}
	var invested Money
	for _, h := range holdings {
		if !h.IsOpen() {
			continue
		}
		if h.Side == Short {
			invested = invested.Sub(h.OpenValue)
		} else {
			invested = invested.Add(h.OpenValue)
		}
	}
	return invested, nil
}

// UnrealizedGain returns the market value minus the invested value on a date.
func (c *Calculator) UnrealizedGain(p *Position, on date.Date) (Money, error) {
	mv, err := c.MarketValue(p, on)
	if err != nil {
		return Money{}, err
	}
	iv, err := c.InvestedValue(p, on)
	if err != nil {
		return Money{}, err
	}
	return mv.Sub(iv), nil
}

// RealizedGain returns the sum of the gains of the holdings closed on or before a date.
func (c *Calculator) RealizedGain(p *Position, on date.Date) (Money, error) {
	holdings, err := fifo(p, on)
	if err != nil {
		return Money{}, err
	}
	var gain Money
	for _, h := range holdings {
		gain = gain.Add(h.Gain())
	}
	return gain, nil
}

// TotalValue returns the available cash of p plus the market value of all
// its positions on a date.
func (c *Calculator) TotalValue(p *Portfolio, on date.Date) (Money, error) {
	total := p.AvailableCash(on)
	for pos := range p.Positions() {
		mv, err := c.MarketValue(pos, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(mv)
	}
	return total, nil
}

// TotalInvestedValue returns the invested value of all the positions of p on a date.
func (c *Calculator) TotalInvestedValue(p *Portfolio, on date.Date) (Money, error) {
	total := M(0, p.Currency())
	for pos := range p.Positions() {
		iv, err := c.InvestedValue(pos, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(iv)
	}
	return total, nil
}
