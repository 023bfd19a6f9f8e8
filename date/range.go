package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range between two dates, in whatever order they are given.
func NewRange(a, b Date) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{From: a, To: b}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range, boundaries included.
func (r Range) Days() int {
	return int(r.To.time().Sub(r.From.time()).Hours()/24) + 1
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
