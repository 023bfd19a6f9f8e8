package basket

import (
	"iter"

	"github.com/etnz/basket/date"
)

// EventKind identifies a single sub-ledger write.
type EventKind string

// Event kinds.
const (
	EventCreditCash       EventKind = "credit-cash"
	EventDebitCash        EventKind = "debit-cash"
	EventOpenLong         EventKind = "open-long"
	EventCloseLong        EventKind = "close-long"
	EventOpenShort        EventKind = "open-short"
	EventCloseShort       EventKind = "close-short"
	EventSkipReinvestment EventKind = "skip-reinvestment"
)

// Event is the record of one atomic write to the cash account or to a
// position, in the order the portfolio performed them.
type Event struct {
	Kind   EventKind
	TxID   string
	On     date.Date
	Ticker string   // empty for cash events
	Shares Quantity // zero for cash events
	Amount Money    // the cash moved or the value of the shares
}

// journal holds the events in application order.
type journal struct {
	events []Event
}

func (j *journal) record(e ...Event) { j.events = append(j.events, e...) }

func (j *journal) all() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range j.events {
			if !yield(e) {
				return
			}
		}
	}
}
