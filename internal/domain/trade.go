package domain

import "time"

// Side is the direction of a trade fill.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade represents one normalized exchange fill. Instances are immutable once
// produced by a source adapter; the FIFO matcher returns a new slice with
// RealizedPnL populated instead of mutating its input.
type Trade struct {
	Timestamp time.Time
	Side      Side
	Price     float64
	Quantity  float64
	// Notional is the monetary value of the fill. Usually Price*Quantity,
	// but some sources deliver a fee-adjusted notional directly.
	Notional float64
	// Fee is always a non-negative magnitude; source adapters are
	// responsible for stripping sign conventions.
	Fee float64
	// RealizedPnL is set only on sell fills that were matched against a
	// prior buy. nil means "no P&L booked", which is distinct from zero.
	RealizedPnL *float64
}

// Matched reports whether the trade is a sell with realized P&L booked.
func (t Trade) Matched() bool {
	return t.Side == SideSell && t.RealizedPnL != nil
}

// AccountSnapshot captures the current state of an exchange account as seen
// by a source adapter at fetch time.
type AccountSnapshot struct {
	// CurrentValue is the total account value in the quote currency
	// (holdings marked at the latest price plus available cash).
	CurrentValue float64
}
