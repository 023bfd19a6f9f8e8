package basket

import (
	"os"
	"slices"
	"testing"
)

// TestBrokerageLink replays a full brokerage account history and values it.
func TestBrokerageLink(t *testing.T) {
	ledger, err := os.Open("testdata/brokeragelink.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()
	txs, err := DecodeTransactions(ledger)
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}

	data, err := os.Open("testdata/prices.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	defer data.Close()
	prices, err := DecodeMarketData(data, "USD")
	if err != nil {
		t.Fatalf("DecodeMarketData() error = %v", err)
	}

	pf := NewPortfolioFactory(NewTransactionFactory(nil, "USD"), Options{})
	p, err := pf.ConstructPortfolioWithCashTicker("FDRXX", slices.Values(txs))
	if err != nil {
		t.Fatalf("ConstructPortfolioWithCashTicker() error = %v", err)
	}

	on := day("2009-07-23")
	if got, want := p.AvailableCash(on), USD(1050); !got.Equal(want) {
		t.Errorf("AvailableCash() = %s, want %s", got.Exact(), want.Exact())
	}

	got, err := p.TotalValue(prices, on)
	if err != nil {
		t.Fatalf("TotalValue() error = %v", err)
	}
	want, _ := ParseMoney("14293.81547", "USD")
	if !got.Equal(want) {
		t.Errorf("TotalValue() = %s, want %s", got.Exact(), want.Exact())
	}

	// every transaction is applied, the cash ticker has no position.
	if got := len(slices.Collect(p.Transactions())); got != len(txs) {
		t.Errorf("len(Transactions()) = %d, want %d", got, len(txs))
	}
	if _, ok := p.Position("FDRXX"); ok {
		t.Error("Position(FDRXX) exists")
	}

	report, err := NewValuationReport(p, prices, on)
	if err != nil {
		t.Fatalf("NewValuationReport() error = %v", err)
	}
	if !report.TotalValue.Equal(got) {
		t.Errorf("report TotalValue = %s, want %s", report.TotalValue.Exact(), got.Exact())
	}
	if len(report.Positions) != 3 {
		t.Errorf("len(report.Positions) = %d, want 3", len(report.Positions))
	}
}
