package basket

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/etnz/basket/date"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator returns a new unique transaction identifier on each call.
type IDGenerator func() string

// UUIDs generates random UUIDv4 identifiers.
func UUIDs() IDGenerator { return uuid.NewString }

// ULIDs generates lexicographically sortable identifiers stamped with clock.
func ULIDs(clock func() time.Time) IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	return func() string {
		return ulid.MustNew(ulid.Timestamp(clock()), ulid.DefaultEntropy()).String()
	}
}

// Sequence generates prefix1, prefix2, ... It is deterministic, which makes it
// handy for fixtures.
func Sequence(prefix string) IDGenerator {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s%d", prefix, n.Add(1)) }
}

// TransactionFactory creates transactions with fresh identifiers.
type TransactionFactory struct {
	nextID   IDGenerator
	currency string

	// SettlementLag is the number of days between execution and settlement
	// of share transactions (T+N). Cash transactions settle on execution.
	SettlementLag int
}

// NewTransactionFactory creates a factory. Amounts without a currency get currency.
func NewTransactionFactory(ids IDGenerator, currency string) *TransactionFactory {
	if ids == nil {
		ids = UUIDs()
	}
	return &TransactionFactory{nextID: ids, currency: currency}
}

// Currency returns the factory default currency.
func (f *TransactionFactory) Currency() string { return f.currency }

// Money is a shortcut for M(value, f.Currency()).
func (f *TransactionFactory) Money(value float64) Money { return M(value, f.currency) }

func (f *TransactionFactory) withCurrency(m Money) Money {
	if m.cur == "" {
		m.cur = f.currency
	}
	return m
}

func (f *TransactionFactory) base(order OrderType, executed, settled date.Date) baseTx {
	return baseTx{ID: f.nextID(), Order: order, Executed: executed, Settled: settled}
}

func (f *TransactionFactory) cash(order OrderType, on date.Date, amount Money) cashTx {
	return cashTx{baseTx: f.base(order, on, on), Amount: f.withCurrency(amount)}
}

func (f *TransactionFactory) share(order OrderType, on date.Date, ticker string, shares Quantity, price, commission Money) shareTx {
	return shareTx{
		baseTx:     f.base(order, on, on.Add(f.SettlementLag)),
		Ticker:     ticker,
		Shares:     shares,
		Price:      f.withCurrency(price),
		Commission: f.withCurrency(commission),
	}
}

// NewDeposit creates a new Deposit transaction.
func (f *TransactionFactory) NewDeposit(on date.Date, amount Money) Deposit {
	return Deposit{f.cash(OrderDeposit, on, amount)}
}

// NewWithdrawal creates a new Withdrawal transaction.
func (f *TransactionFactory) NewWithdrawal(on date.Date, amount Money) Withdrawal {
	return Withdrawal{f.cash(OrderWithdrawal, on, amount)}
}

// NewBuy creates a new Buy transaction.
func (f *TransactionFactory) NewBuy(on date.Date, ticker string, shares Quantity, price, commission Money) Buy {
	return Buy{f.share(OrderBuy, on, ticker, shares, price, commission)}
}

// NewSell creates a new Sell transaction.
func (f *TransactionFactory) NewSell(on date.Date, ticker string, shares Quantity, price, commission Money) Sell {
	return Sell{f.share(OrderSell, on, ticker, shares, price, commission)}
}

// NewSellShort creates a new SellShort transaction.
func (f *TransactionFactory) NewSellShort(on date.Date, ticker string, shares Quantity, price, commission Money) SellShort {
	return SellShort{f.share(OrderSellShort, on, ticker, shares, price, commission)}
}

// NewBuyToCover creates a new BuyToCover transaction.
func (f *TransactionFactory) NewBuyToCover(on date.Date, ticker string, shares Quantity, price, commission Money) BuyToCover {
	return BuyToCover{f.share(OrderBuyToCover, on, ticker, shares, price, commission)}
}

// NewDividendReceipt creates a new DividendReceipt transaction: shares is the
// number of shares the dividend is paid on and price the dividend per share.
func (f *TransactionFactory) NewDividendReceipt(on date.Date, ticker string, shares Quantity, price, commission Money) DividendReceipt {
	return DividendReceipt{f.share(OrderDividendReceipt, on, ticker, shares, price, commission)}
}

// NewDividendReinvestment creates a new DividendReinvestment transaction.
func (f *TransactionFactory) NewDividendReinvestment(on date.Date, ticker string, shares Quantity, price, commission Money) DividendReinvestment {
	return DividendReinvestment{f.share(OrderDividendReinvestment, on, ticker, shares, price, commission)}
}
