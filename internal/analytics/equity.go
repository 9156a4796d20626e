package analytics

import (
	"sort"

	"github.com/bkinvest/botboard/internal/domain"
)

// BuildEquityCurve replays matched sells in chronological order over the
// initial capital and returns the resulting portfolio-value series. The
// first point is always initialCapital, then one point per matched sell, so
// len(curve) == matchedSellCount + 1 for every input including the empty one.
func BuildEquityCurve(trades []domain.Trade, initialCapital float64) []float64 {
	matched := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Matched() {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	curve := make([]float64, 0, len(matched)+1)
	equity := initialCapital
	curve = append(curve, equity)
	for _, t := range matched {
		equity += *t.RealizedPnL
		curve = append(curve, equity)
	}
	return curve
}
