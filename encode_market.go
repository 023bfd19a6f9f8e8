package basket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/basket/date"
	"github.com/shopspring/decimal"
)

const attrOn = "on"

// Market data is persisted as JSONL, one line per day holding the closes of
// that day:
//
//	{"on":"2009-07-23", "DE":44.01, "FCNTX":61.97}
//
// It is human-readable and git-friendly.

// DecodeMarketData reads closing prices in currency from a JSONL stream.
// Prices are decoded exactly, without going through floating point.
func DecodeMarketData(r io.Reader, currency string) (*MarketData, error) {
	m := NewMarketData(currency)
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := decodeLine(m, line); err != nil {
			return nil, fmt.Errorf("format error on line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading market data: %w", err)
	}
	return m, nil
}

// decodeLine appends the closes of a single line to m.
func decodeLine(m *MarketData, line []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return err
	}
	raw, ok := fields[attrOn]
	if !ok {
		return fmt.Errorf("missing %q attribute", attrOn)
	}
	var on date.Date
	if err := json.Unmarshal(raw, &on); err != nil {
		return fmt.Errorf("invalid %q attribute: %w", attrOn, err)
	}
	delete(fields, attrOn)

	for ticker, raw := range fields {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("invalid price for %q: %w", ticker, err)
		}
		price, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("invalid price for %q: %w", ticker, err)
		}
		m.Add(ticker, on, M(price, m.currency))
	}
	return nil
}

// EncodeMarketData writes m in JSONL format, one line per day in chronological order.
func EncodeMarketData(w io.Writer, m *MarketData) error {
	days := make(map[date.Date]map[string]Money)
	for ticker := range m.Tickers() {
		for on, price := range m.Closes(ticker) {
			if days[on] == nil {
				days[on] = make(map[string]Money)
			}
			days[on][ticker] = price
		}
	}
	order := make([]date.Date, 0, len(days))
	for on := range days {
		order = append(order, on)
	}
	slices.SortFunc(order, date.Date.Compare)

	for _, on := range order {
		// json.Marshal of a map would sort "on" among tickers, fields are written one by one.
		var l jsonLine
		l.Field(attrOn, on)
		closes := days[on]
		tickers := make([]string, 0, len(closes))
		for t := range closes {
			tickers = append(tickers, t)
		}
		slices.Sort(tickers)
		for _, t := range tickers {
			l.Field(t, closes[t])
		}
		data, err := l.Bytes()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("persist error: cannot write market data: %w", err)
		}
	}
	return nil
}
