// Package analytics computes trading statistics on closed holdings.
package analytics

import (
	"math"

	"github.com/etnz/basket"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the outcome of closed holdings.
//
// Returns are gains relative to the opening value of each holding, a
// holding opened for nothing has no return and is only counted.
type Summary struct {
	Closed int // Closed holdings, open ones are ignored.
	Wins   int
	Losses int

	WinRate     float64 // Wins / Closed
	MeanWin     float64 // mean return of winning holdings
	MeanLoss    float64 // mean return of losing holdings, negative
	StdDev      float64 // standard deviation of all returns
	PayoffRatio float64 // MeanWin / |MeanLoss|, +Inf without loss or with a win opened for nothing
	// Kelly is the Kelly fraction W − (1−W)/R where W is the win rate and R
	// the payoff ratio. It is W without loss and 0 without win.
	Kelly float64

	Gain basket.Money // total realized gain
}

// returnOf returns the gain of h relative to its opening value.
func returnOf(h basket.Holding) (float64, bool) {
	if h.OpenValue.IsZero() {
		return 0, false
	}
	return h.Gain().Decimal().Div(h.OpenValue.Decimal()).InexactFloat64(), true
}

// Summarize computes the summary of the closed holdings.
func Summarize(holdings []basket.Holding) Summary {
	var (
		s                 Summary
		all, wins, losses []float64
	)
	for _, h := range holdings {
		if h.IsOpen() {
			continue
		}
		s.Closed++
		s.Gain = s.Gain.Add(h.Gain())
		gain := h.Gain()
		switch {
		case gain.IsPositive():
			s.Wins++
		case gain.IsNegative():
			s.Losses++
		}
		r, ok := returnOf(h)
		if !ok {
			continue
		}
		all = append(all, r)
		switch {
		case gain.IsPositive():
			wins = append(wins, r)
		case gain.IsNegative():
			losses = append(losses, r)
		}
	}
	if s.Closed == 0 {
		return s
	}

	s.WinRate = float64(s.Wins) / float64(s.Closed)
	if len(wins) > 0 {
		s.MeanWin = stat.Mean(wins, nil)
	}
	if len(losses) > 0 {
		s.MeanLoss = stat.Mean(losses, nil)
	}
	if len(all) > 1 {
		s.StdDev = stat.StdDev(all, nil)
	}

	// wins opened for nothing have an unbounded return.
	switch {
	case s.Wins == 0:
		s.PayoffRatio, s.Kelly = 0, 0
	case len(wins) < s.Wins || len(losses) == 0 || s.MeanLoss == 0:
		s.PayoffRatio, s.Kelly = math.Inf(1), s.WinRate
	default:
		s.PayoffRatio = s.MeanWin / math.Abs(s.MeanLoss)
		s.Kelly = s.WinRate - (1-s.WinRate)/s.PayoffRatio
	}
	return s
}
