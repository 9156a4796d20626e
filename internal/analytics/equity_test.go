package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

func TestBuildEquityCurve_EmptyTrades(t *testing.T) {
	curve := BuildEquityCurve(nil, 1000)
	assert.Equal(t, []float64{1000}, curve)
}

func TestBuildEquityCurve_LengthInvariant(t *testing.T) {
	trades := MatchFIFO([]domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideSell, 110, 1, 0),
		fill(ts(3, 9), domain.SideBuy, 105, 1, 0),
		fill(ts(4, 9), domain.SideSell, 95, 1, 0),
		fill(ts(5, 9), domain.SideSell, 90, 1, 0), // unmatched
	})

	matchedSells := 0
	for _, tr := range trades {
		if tr.Matched() {
			matchedSells++
		}
	}
	require.Equal(t, 2, matchedSells)

	curve := BuildEquityCurve(trades, 1000)
	assert.Len(t, curve, matchedSells+1)
}

func TestBuildEquityCurve_RunningSumInChronologicalOrder(t *testing.T) {
	trades := MatchFIFO([]domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideSell, 110, 1, 0), // +10
		fill(ts(3, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(4, 9), domain.SideSell, 95, 1, 0), // -5
	})

	curve := BuildEquityCurve(trades, 1000)
	require.Len(t, curve, 3)
	assert.InDelta(t, 1000, curve[0], 1e-9)
	assert.InDelta(t, 1010, curve[1], 1e-9)
	assert.InDelta(t, 1005, curve[2], 1e-9)
}

func TestBuildEquityCurve_IgnoresUnmatchedSellsAndBuys(t *testing.T) {
	trades := MatchFIFO([]domain.Trade{
		fill(ts(1, 9), domain.SideSell, 100, 1, 0), // unmatched
		fill(ts(2, 9), domain.SideBuy, 100, 1, 0),  // open lot
	})

	curve := BuildEquityCurve(trades, 500)
	assert.Equal(t, []float64{500}, curve)
}
