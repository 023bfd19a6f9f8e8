// Package basket replays a chronological log of financial transactions into
// a portfolio and values it against historical prices.
//
// The main pieces are:
//   - Transactions: immutable records of deposits, withdrawals, buys, sells,
//     short sales, covers, dividend receipts and reinvestments, created by a
//     TransactionFactory or decoded from JSONL.
//   - Ledgers: a Position per security and a single CashAccount, each the
//     ordered list of what was applied to it. Shares held, cost basis and
//     available cash are computed from the ledger as of any date.
//   - Portfolio: owns the ledgers and applies each transaction to them, all
//     or nothing, rejecting anything that would sell shares not held or spend
//     cash not available.
//   - Calculator: values positions and portfolios against a PriceProvider,
//     matching lots first in first out for invested value and gains.
//
// All amounts use exact decimal arithmetic.
package basket
