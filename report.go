package basket

import (
	"time"

	"github.com/etnz/basket/date"
)

// ValuationReport is a point in time view of a portfolio.
type ValuationReport struct {
	Date       date.Date
	Time       time.Time // Generation time
	CashTicker string
	Currency   string
	Positions  []PositionLine
	Cash       Money
	// Totals over the positions.
	MarketValue    Money
	InvestedValue  Money
	UnrealizedGain Money
	RealizedGain   Money
	// TotalValue is the cash plus the market value.
	TotalValue Money
}

// PositionLine is the valuation of a single position.
type PositionLine struct {
	Ticker         string
	Shares         Quantity
	Price          Money // zero when no share is held
	MarketValue    Money
	InvestedValue  Money
	UnrealizedGain Money
	RealizedGain   Money
}

// NewValuationReport values every position of p on a date.
//
// Positions without shares are listed for their realized gains.
func NewValuationReport(p *Portfolio, prices PriceProvider, on date.Date) (*ValuationReport, error) {
	c := NewCalculator(prices)
	cur := p.Currency()
	r := &ValuationReport{
		Date:           on,
		Time:           time.Now(),
		CashTicker:     p.CashTicker(),
		Currency:       cur,
		Cash:           p.AvailableCash(on),
		MarketValue:    M(0, cur),
		InvestedValue:  M(0, cur),
		UnrealizedGain: M(0, cur),
		RealizedGain:   M(0, cur),
	}
	for pos := range p.Positions() {
		line := PositionLine{Ticker: pos.Ticker(), Shares: pos.SharesHeldAt(on)}
		if !line.Shares.IsZero() {
			price, err := c.Price(pos.Ticker(), on)
			if err != nil {
				return nil, err
			}
			line.Price = price
		}
		var err error
		if line.MarketValue, err = c.MarketValue(pos, on); err != nil {
			return nil, err
		}
		if line.InvestedValue, err = c.InvestedValue(pos, on); err != nil {
			return nil, err
		}
		if line.RealizedGain, err = c.RealizedGain(pos, on); err != nil {
			return nil, err
		}
		line.UnrealizedGain = line.MarketValue.Sub(line.InvestedValue)

		r.Positions = append(r.Positions, line)
		r.MarketValue = r.MarketValue.Add(line.MarketValue)
		r.InvestedValue = r.InvestedValue.Add(line.InvestedValue)
		r.UnrealizedGain = r.UnrealizedGain.Add(line.UnrealizedGain)
		r.RealizedGain = r.RealizedGain.Add(line.RealizedGain)
	}
	r.TotalValue = r.Cash.Add(r.MarketValue)
	return r, nil
}
