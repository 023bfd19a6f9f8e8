package basket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/basket/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonTx is the union of every transaction field, used for decoding.
type jsonTx struct {
	ID         string          `json:"id"`
	Order      OrderType       `json:"order"`
	Executed   date.Date       `json:"executed"`
	Settled    date.Date       `json:"settled"`
	Ticker     string          `json:"ticker"`
	Shares     decimal.Decimal `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

func (j jsonTx) base() baseTx {
	return baseTx{ID: j.ID, Order: j.Order, Executed: j.Executed, Settled: j.Settled}
}

func (j jsonTx) cash() cashTx {
	return cashTx{baseTx: j.base(), Amount: M(j.Amount, j.Currency)}
}

func (j jsonTx) share() shareTx {
	return shareTx{
		baseTx:     j.base(),
		Ticker:     j.Ticker,
		Shares:     Q(j.Shares),
		Price:      M(j.Price, j.Currency),
		Commission: M(j.Commission, j.Currency),
	}
}

// transaction converts the line into its variant.
func (j jsonTx) transaction() (Transaction, error) {
	switch j.Order {
	case OrderDeposit:
		return Deposit{j.cash()}, nil
	case OrderWithdrawal:
		return Withdrawal{j.cash()}, nil
	case OrderBuy:
		return Buy{j.share()}, nil
	case OrderSell:
		return Sell{j.share()}, nil
	case OrderSellShort:
		return SellShort{j.share()}, nil
	case OrderBuyToCover:
		return BuyToCover{j.share()}, nil
	case OrderDividendReceipt:
		return DividendReceipt{j.share()}, nil
	case OrderDividendReinvestment:
		return DividendReinvestment{j.share()}, nil
	default:
		return nil, fmt.Errorf("unknown order %q", j.Order)
	}
}

// DecodeTransactions reads transactions from a stream of JSONL data, one
// transaction per line, and returns them in file order.
//
// Transactions are not validated: the portfolio does it when they are applied.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var j jsonTx
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		tx, err := j.transaction()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transactions: %w", err)
	}
	return txs, nil
}

// marshalTransaction writes the fields of tx in a stable order, as a JSON line.
func marshalTransaction(tx Transaction) ([]byte, error) {
	var l jsonLine
	l.Field("id", tx.TxID()).
		Field("order", tx.What()).
		Field("executed", tx.When()).
		Date("settled", tx.SettledOn())
	if s, ok := tx.(ShareTransaction); ok {
		l.Field("ticker", s.Security()).
			Field("shares", s.Quantity()).
			Field("price", s.PricePerShare()).
			Field("commission", s.Fee()).
			Currency(s.PricePerShare())
	} else {
		l.Field("amount", tx.TotalValue()).
			Currency(tx.TotalValue())
	}
	return l.Bytes()
}

// EncodeTransaction writes tx as a single JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := marshalTransaction(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction %s: %w", tx.TxID(), err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions writes txs in JSONL format, in the given order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
