package basket

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/basket/date"
)

// PriceProvider gives the price of one share of a security on a date.
type PriceProvider interface {
	Price(ticker string, on date.Date) (Money, error)
}

// PriceProviderFunc adapts a function to the PriceProvider interface.
type PriceProviderFunc func(ticker string, on date.Date) (Money, error)

func (f PriceProviderFunc) Price(ticker string, on date.Date) (Money, error) { return f(ticker, on) }

// MarketData holds daily closing prices per security in memory.
//
// Prices are resolved to the most recent close on or before the requested
// date. A date before the first close has no price.
type MarketData struct {
	currency string
	closes   map[string]*date.History[Money]
}

// NewMarketData creates an empty set of prices in currency.
func NewMarketData(currency string) *MarketData {
	return &MarketData{currency: currency, closes: make(map[string]*date.History[Money])}
}

// Currency returns the currency prices are expressed in.
func (m *MarketData) Currency() string { return m.currency }

// Add records the closing price of a security on a date, replacing any previous one.
func (m *MarketData) Add(ticker string, on date.Date, price Money) {
	h, ok := m.closes[ticker]
	if !ok {
		h = new(date.History[Money])
		m.closes[ticker] = h
	}
	if price.Currency() == "" {
		price = M(price.Decimal(), m.currency)
	}
	h.Append(on, price)
}

// Append merges every close of other into m.
func (m *MarketData) Append(other *MarketData) {
	for ticker, h := range other.closes {
		for on, price := range h.Values() {
			m.Add(ticker, on, price)
		}
	}
}

// Price returns the most recent close of ticker on or before on.
func (m *MarketData) Price(ticker string, on date.Date) (Money, error) {
	h, ok := m.closes[ticker]
	if !ok {
		return Money{}, &PriceError{Ticker: ticker, On: on, Err: ErrPriceUnavailable}
	}
	price, ok := h.ValueAsOf(on)
	if !ok {
		return Money{}, &PriceError{Ticker: ticker, On: on, Err: ErrPriceUnavailable}
	}
	return price, nil
}

// Coverage returns the first and last dates with a close for ticker.
func (m *MarketData) Coverage(ticker string) (date.Range, bool) {
	h, ok := m.closes[ticker]
	if !ok {
		return date.Range{}, false
	}
	return h.Span()
}

// Tickers returns an iterator over the securities with prices, sorted.
func (m *MarketData) Tickers() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(m.closes)))
}

// Closes returns an iterator over the closes of ticker in chronological order.
func (m *MarketData) Closes(ticker string) iter.Seq2[date.Date, Money] {
	h, ok := m.closes[ticker]
	if !ok {
		return func(func(date.Date, Money) bool) {}
	}
	return h.Values()
}
