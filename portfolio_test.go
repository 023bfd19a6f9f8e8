package basket

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newDEPortfolio returns the portfolio holding 100 DE bought on 2020-01-02
// with a 1,000,000 opening deposit. Its transactions are open1 and open2.
func newDEPortfolio(t *testing.T) *Portfolio {
	t.Helper()
	f := NewTransactionFactory(Sequence("open"), "USD")
	pf := NewPortfolioFactory(f, Options{})
	p, err := pf.ConstructPortfolioWithOpeningDeposit("FDRXX", day("1900-01-01"), USD(1000000), slices.Values([]Transaction{
		f.NewBuy(day("2020-01-02"), "DE", Q(100), USD(50), USD(5)),
	}))
	if err != nil {
		t.Fatalf("ConstructPortfolioWithOpeningDeposit() error = %v", err)
	}
	return p
}

func TestPortfolio_BuyThenSell(t *testing.T) {
	f := newTestFactory()
	p := newDEPortfolio(t)

	if got, want := p.AvailableCash(day("2020-01-02")), USD(994995); !got.Equal(want) {
		t.Errorf("AvailableCash() after buy = %s, want %s", got.Exact(), want.Exact())
	}

	if err := p.AddTransaction(f.NewSell(day("2020-02-01"), "DE", Q(50), USD(60), USD(5))); err != nil {
		t.Fatalf("AddTransaction(sell) error = %v", err)
	}
	if got, want := p.AvailableCash(day("2020-02-01")), USD(997990); !got.Equal(want) {
		t.Errorf("AvailableCash() after sell = %s, want %s", got.Exact(), want.Exact())
	}
	de, ok := p.Position("DE")
	if !ok {
		t.Fatal("Position(DE) not found")
	}
	if got, want := de.SharesHeldAt(day("2020-02-01")), Q(50); !got.Equal(want) {
		t.Errorf("SharesHeldAt() = %s, want %s", got, want)
	}
	// the position is reused.
	if got := len(slices.Collect(p.Positions())); got != 1 {
		t.Errorf("len(Positions()) = %d, want 1", got)
	}
}

// snapshot captures the observable state of a portfolio.
type snapshot struct {
	cash   Money
	shares Quantity
	txs    int
	events int
}

func takeSnapshot(p *Portfolio, ticker string) snapshot {
	on := day("2100-01-01")
	s := snapshot{
		cash:   p.AvailableCash(on),
		txs:    len(slices.Collect(p.Transactions())),
		events: len(slices.Collect(p.Events())),
	}
	if pos, ok := p.Position(ticker); ok {
		s.shares = pos.SharesHeldAt(on)
	}
	return s
}

func TestPortfolio_AllOrNothing(t *testing.T) {
	f := newTestFactory()
	other := NewTransactionFactory(Sequence("open"), "USD") // same ids as the opening deposit.
	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"sell more than held", f.NewSell(day("2020-02-01"), "DE", Q(150), USD(60), USD(5)), ErrInsufficientShares},
		{"sell before the buy", f.NewSell(day("2020-01-01"), "DE", Q(10), USD(60), USD(5)), ErrInsufficientShares},
		{"sell unknown security", f.NewSell(day("2020-02-01"), "AAPL", Q(1), USD(60), USD(5)), ErrInsufficientShares},
		{"cover without short", f.NewBuyToCover(day("2020-02-01"), "DE", Q(1), USD(60), USD(0)), ErrInsufficientShares},
		{"buy too much", f.NewBuy(day("2020-02-01"), "DE", Q(100000), USD(60), USD(5)), ErrInsufficientFunds},
		{"withdraw too much", f.NewWithdrawal(day("2020-02-01"), USD(994995.01)), ErrInsufficientFunds},
		{"withdraw before the deposit", f.NewWithdrawal(day("1899-12-31"), USD(1)), ErrInsufficientFunds},
		{"reinvest too much", f.NewDividendReinvestment(day("2020-02-01"), "DE", Q(100000), USD(60), USD(0)), ErrInsufficientFunds},
		{"invalid transaction", f.NewBuy(day("2020-02-01"), "DE", Q(0), USD(60), USD(5)), ErrInvalidTransaction},
		{"duplicate id", other.NewDeposit(day("2020-02-01"), USD(1)), ErrInvalidTransaction},
		{"foreign currency deposit", f.NewDeposit(day("2020-02-01"), M(5, "EUR")), ErrInvalidTransaction},
		{"foreign currency buy", f.NewBuy(day("2020-02-01"), "DE", Q(1), M(1, "EUR"), M(0, "EUR")), ErrInvalidTransaction},
		{"price and commission currencies differ", f.NewBuy(day("2020-02-01"), "DE", Q(1), M(1, "EUR"), USD(1)), ErrInvalidTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newDEPortfolio(t)
			ticker := "DE"
			if s, ok := tt.tx.(ShareTransaction); ok {
				ticker = s.Security()
			}
			before := takeSnapshot(p, ticker)

			err := p.AddTransaction(tt.tx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddTransaction() = %v, want %v", err, tt.want)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Tx.TxID() != tt.tx.TxID() {
				t.Errorf("AddTransaction() = %v, want a *ValidationError on %s", err, tt.tx.TxID())
			}

			after := takeSnapshot(p, ticker)
			if diff := cmp.Diff(before, after, cmpOpts, cmp.AllowUnexported(snapshot{})); diff != "" {
				t.Errorf("portfolio changed (-before +after):\n%s", diff)
			}
			if _, ok := p.Position("AAPL"); ok {
				t.Error("a rejected transaction created a position")
			}
		})
	}
}

func TestPortfolio_FirstCurrency(t *testing.T) {
	p := NewPortfolio("", Options{})
	eur := NewTransactionFactory(Sequence("eur"), "EUR")
	if err := p.AddTransaction(eur.NewDeposit(day("2020-01-01"), M(10, "EUR"))); err != nil {
		t.Fatalf("AddTransaction(EUR) error = %v", err)
	}
	if got := p.Currency(); got != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got)
	}
	err := p.AddTransaction(newTestFactory().NewDeposit(day("2020-01-02"), USD(1)))
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("AddTransaction(USD) = %v, want %v", err, ErrInvalidTransaction)
	}
	if got, want := p.AvailableCash(day("2020-01-31")), M(10, "EUR"); !got.Equal(want) {
		t.Errorf("AvailableCash() = %s, want %s", got.Exact(), want.Exact())
	}
}

func TestPortfolio_EventOrder(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{})
	txs := []Transaction{
		f.NewDeposit(day("2020-01-01"), USD(1000)),
		f.NewBuy(day("2020-01-02"), "DE", Q(10), USD(10), USD(0)),
		f.NewSell(day("2020-01-03"), "DE", Q(5), USD(10), USD(0)),
		f.NewSellShort(day("2020-01-04"), "XYZ", Q(10), USD(20), USD(0)),
		f.NewBuyToCover(day("2020-01-05"), "XYZ", Q(10), USD(15), USD(0)),
		f.NewDividendReceipt(day("2020-01-06"), "DE", Q(5), USD(1), USD(0)),
		f.NewDividendReinvestment(day("2020-01-06"), "DE", Q(0.5), USD(10), USD(0)),
		f.NewWithdrawal(day("2020-01-07"), USD(100)),
	}
	p, err := pf.ConstructPortfolio(slices.Values(txs))
	if err != nil {
		t.Fatalf("ConstructPortfolio() error = %v", err)
	}

	type ev struct {
		Kind EventKind
		TxID string
	}
	var got []ev
	for e := range p.Events() {
		got = append(got, ev{e.Kind, e.TxID})
	}
	want := []ev{
		{EventCreditCash, "tx1"},
		// opening: cash then shares.
		{EventDebitCash, "tx2"}, {EventOpenLong, "tx2"},
		// closing: shares then cash.
		{EventCloseLong, "tx3"}, {EventCreditCash, "tx3"},
		{EventCreditCash, "tx4"}, {EventOpenShort, "tx4"},
		{EventCloseShort, "tx5"}, {EventDebitCash, "tx5"},
		{EventCreditCash, "tx6"},
		{EventDebitCash, "tx7"}, {EventOpenLong, "tx7"},
		{EventDebitCash, "tx8"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Events() mismatch (-want +got):\n%s", diff)
	}

	// 1000 -100 +50 +200 -150 +5 -5 -100
	if got, want := p.AvailableCash(day("2020-01-07")), USD(900); !got.Equal(want) {
		t.Errorf("AvailableCash() = %s, want %s", got.Exact(), want.Exact())
	}
	// the receipt does not touch the DE position.
	de, _ := p.Position("DE")
	if got, want := de.Len(), 3; got != want {
		t.Errorf("DE ledger length = %d, want %d", got, want)
	}
}

func TestPortfolio_CashTickerReinvestment(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{})
	p, err := pf.ConstructPortfolioWithOpeningDeposit("FDRXX", day("2009-01-05"), USD(100), slices.Values([]Transaction{
		f.NewDividendReceipt(day("2009-03-31"), "FDRXX", Q(12.5), USD(1), USD(0)),
	}))
	if err != nil {
		t.Fatalf("ConstructPortfolioWithOpeningDeposit() error = %v", err)
	}
	on := day("2009-03-31")
	before := p.AvailableCash(on)

	reinvest := f.NewDividendReinvestment(on, "FDRXX", Q(12.5), USD(1), USD(0))
	if err := p.AddTransaction(reinvest); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if got := p.AvailableCash(on); !got.Equal(before) {
		t.Errorf("AvailableCash() = %s, want unchanged %s", got.Exact(), before.Exact())
	}
	if _, ok := p.Position("FDRXX"); ok {
		t.Error("the cash ticker reinvestment created a position")
	}
	// it is recorded nevertheless.
	if !slices.Contains(slices.Collect(p.Transactions()), Transaction(reinvest)) {
		t.Error("Transactions() does not contain the reinvestment")
	}
	events := slices.Collect(p.Events())
	if last := events[len(events)-1]; last.Kind != EventSkipReinvestment || last.TxID != reinvest.TxID() {
		t.Errorf("last event = %v %v, want %v %v", last.Kind, last.TxID, EventSkipReinvestment, reinvest.TxID())
	}
}

func TestPortfolio_Margin(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{Margin: MarginLimit(USD(500))})
	p, err := pf.ConstructPortfolio(slices.Values([]Transaction{
		f.NewDeposit(day("2020-01-01"), USD(100)),
		f.NewBuy(day("2020-01-02"), "DE", Q(5), USD(100), USD(0)),
	}))
	if err != nil {
		t.Fatalf("ConstructPortfolio() error = %v", err)
	}
	if got, want := p.AvailableCash(day("2020-01-02")), USD(-400); !got.Equal(want) {
		t.Errorf("AvailableCash() = %s, want %s", got.Exact(), want.Exact())
	}
	err = p.AddTransaction(f.NewBuy(day("2020-01-03"), "DE", Q(2), USD(100), USD(0)))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("AddTransaction() = %v, want %v", err, ErrInsufficientFunds)
	}
}

func TestPortfolio_TotalValueIdentity(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{})
	p, err := pf.ConstructPortfolio(slices.Values([]Transaction{
		f.NewDeposit(day("2020-01-01"), USD(10000)),
		f.NewBuy(day("2020-01-02"), "DE", Q(10), USD(100), USD(1)),
		f.NewBuy(day("2020-01-03"), "AAPL", Q(3.5), USD(300), USD(1)),
		f.NewSellShort(day("2020-01-04"), "XYZ", Q(20), USD(10), USD(0)),
		f.NewSell(day("2020-01-10"), "DE", Q(10), USD(110), USD(1)),
	}))
	if err != nil {
		t.Fatalf("ConstructPortfolio() error = %v", err)
	}
	prices := NewMarketData("USD")
	for i, on := range []string{"2020-01-01", "2020-01-05", "2020-01-09", "2020-01-15"} {
		prices.Add("DE", day(on), USD(100+float64(i)))
		prices.Add("AAPL", day(on), USD(300.33+float64(i)))
		prices.Add("XYZ", day(on), USD(10.5-float64(i)))
	}

	c := NewCalculator(prices)
	for _, s := range []string{"2020-01-01", "2020-01-04", "2020-01-09", "2020-01-10", "2020-02-01"} {
		on := day(s)
		got, err := p.TotalValue(prices, on)
		if err != nil {
			t.Fatalf("TotalValue(%s) error = %v", s, err)
		}
		want := p.AvailableCash(on)
		for pos := range p.Positions() {
			mv, err := c.MarketValue(pos, on)
			if err != nil {
				t.Fatalf("MarketValue(%s, %s) error = %v", pos.Ticker(), s, err)
			}
			want = want.Add(mv)
		}
		if !got.Equal(want) {
			t.Errorf("TotalValue(%s) = %s, want %s", s, got.Exact(), want.Exact())
		}
	}
}

func TestPortfolio_SnapshotsAreDetached(t *testing.T) {
	p := newDEPortfolio(t)
	on := day("2020-03-01")
	f := newTestFactory()

	p.CashAccount().Deposit(on, USD(1), "outside")
	if got, want := p.AvailableCash(on), USD(994995); !got.Equal(want) {
		t.Errorf("AvailableCash() = %s, want %s", got.Exact(), want.Exact())
	}

	de, _ := p.Position("DE")
	if err := de.AddTransaction(f.NewBuy(on, "DE", Q(1), USD(1), USD(0))); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	for pos := range p.Positions() {
		pos.AddTransaction(f.NewBuy(on, "DE", Q(1), USD(1), USD(0)))
	}
	de, _ = p.Position("DE")
	if got, want := de.SharesHeldAt(on), Q(100); !got.Equal(want) {
		t.Errorf("SharesHeldAt() = %s, want %s", got, want)
	}
}

// TestPortfolio_ConcurrentReads is meaningful with -race.
func TestPortfolio_ConcurrentReads(t *testing.T) {
	p := newDEPortfolio(t)
	prices := NewMarketData("USD")
	prices.Add("DE", day("2020-01-02"), USD(60))
	on := day("2020-03-01")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				total, err := p.TotalValue(prices, on)
				if err != nil || !total.Equal(USD(1000995)) {
					t.Errorf("TotalValue() = %s, %v, want 1000995", total.Exact(), err)
					return
				}
				if got := p.AvailableCash(on); !got.Equal(USD(994995)) {
					t.Errorf("AvailableCash() = %s, want 994995", got.Exact())
					return
				}
				de, ok := p.Position("DE")
				if !ok || !de.SharesHeldAt(on).Equal(Q(100)) {
					t.Error("SharesHeldAt() != 100")
					return
				}
			}
		}()
	}
	wg.Wait()
}

type unknownTransaction struct{ Deposit }

func TestPortfolio_Panics(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{})
	tests := []struct {
		name string
		run  func()
	}{
		{"nil sequence", func() { pf.Construct("", nil) }},
		{"nil transaction", func() { pf.ConstructPortfolio(slices.Values([]Transaction{nil})) }},
		{"unknown variant", func() {
			p := NewPortfolio("", Options{Currency: "USD"})
			p.AddTransaction(unknownTransaction{f.NewDeposit(day("2020-01-01"), USD(1))})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("did not panic")
				}
			}()
			tt.run()
		})
	}
}

func TestPortfolioFactory_ReplayError(t *testing.T) {
	f := newTestFactory()
	pf := NewPortfolioFactory(f, Options{})
	_, err := pf.ConstructPortfolio(slices.Values([]Transaction{
		f.NewDeposit(day("2020-01-01"), USD(10)),
		f.NewBuy(day("2020-01-02"), "DE", Q(1), USD(100), USD(0)),
	}))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("ConstructPortfolio() = %v, want %v", err, ErrInsufficientFunds)
	}
}
