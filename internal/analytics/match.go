// Package analytics is the trade analytics engine: FIFO lot matching, equity
// curve reconstruction, and the performance-metric set computed from them.
// Everything in this package is a pure function over its inputs; all metric
// functions are total and degrade to zero on insufficient data instead of
// returning NaN or panicking.
package analytics

import (
	"sort"

	"github.com/bkinvest/botboard/internal/domain"
)

// MatchFIFO pairs each sell against the oldest still-open buy and books the
// realized P&L on the sell leg:
//
//	costBasis = buy.Notional + buy.Fee
//	proceeds  = sell.Notional - sell.Fee
//	pnl       = proceeds - costBasis
//
// Trades are processed in timestamp order (stable: ties keep input order).
// Buys pass through untouched; sells with no open buy pass through with
// RealizedPnL unset. The input slice is not modified. The result is returned
// newest-first, which is the order every display surface expects.
//
// A sell always consumes exactly one buy regardless of the relative
// quantities; partially-filled lots are not split. This mirrors the bots'
// 1-buy-1-sell execution pattern and is a known limitation for anything else.
func MatchFIFO(trades []domain.Trade) []domain.Trade {
	sorted := make([]domain.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]domain.Trade, 0, len(sorted))
	var buyQueue []domain.Trade

	for _, t := range sorted {
		switch t.Side {
		case domain.SideBuy:
			buyQueue = append(buyQueue, t)
			out = append(out, t)
		case domain.SideSell:
			if len(buyQueue) > 0 {
				buy := buyQueue[0]
				buyQueue = buyQueue[1:]
				pnl := (t.Notional - t.Fee) - (buy.Notional + buy.Fee)
				t.RealizedPnL = &pnl
			}
			out = append(out, t)
		}
	}

	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
