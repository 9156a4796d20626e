package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

func ts(day, hour int) time.Time {
	return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC)
}

func fill(t time.Time, side domain.Side, price, qty, fee float64) domain.Trade {
	return domain.Trade{
		Timestamp: t,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Notional:  price * qty,
		Fee:       fee,
	}
}

func TestMatchFIFO_EmptyInput(t *testing.T) {
	assert.Empty(t, MatchFIFO(nil))
	assert.Empty(t, MatchFIFO([]domain.Trade{}))
}

func TestMatchFIFO_SimpleRoundTrip(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideSell, 110, 1, 0),
	}

	out := MatchFIFO(trades)
	require.Len(t, out, 2)

	// Newest first: the sell leads.
	sell, buy := out[0], out[1]
	assert.Equal(t, domain.SideSell, sell.Side)
	require.NotNil(t, sell.RealizedPnL)
	assert.InDelta(t, 10.0, *sell.RealizedPnL, 1e-9)

	assert.Equal(t, domain.SideBuy, buy.Side)
	assert.Nil(t, buy.RealizedPnL)
}

func TestMatchFIFO_FeesAreAlwaysACost(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 2),   // cost basis 102
		fill(ts(2, 9), domain.SideSell, 110, 1, 3), // proceeds 107
	}

	out := MatchFIFO(trades)
	require.NotNil(t, out[0].RealizedPnL)
	assert.InDelta(t, 5.0, *out[0].RealizedPnL, 1e-9)
}

func TestMatchFIFO_PairsOldestBuyFirst(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideBuy, 200, 1, 0),
		fill(ts(3, 9), domain.SideSell, 150, 1, 0),
		fill(ts(4, 9), domain.SideSell, 250, 1, 0),
	}

	out := MatchFIFO(trades)
	require.Len(t, out, 4)

	// out is newest-first: [sell@250, sell@150, buy@200, buy@100].
	require.NotNil(t, out[0].RealizedPnL)
	require.NotNil(t, out[1].RealizedPnL)
	assert.InDelta(t, 50.0, *out[1].RealizedPnL, 1e-9)  // 150 - 100
	assert.InDelta(t, 50.0, *out[0].RealizedPnL, 1e-9)  // 250 - 200
}

func TestMatchFIFO_PairingIndependentOfInputOrder(t *testing.T) {
	a := fill(ts(1, 9), domain.SideBuy, 100, 1, 0)
	b := fill(ts(2, 9), domain.SideBuy, 120, 1, 0)
	c := fill(ts(3, 9), domain.SideSell, 130, 1, 0)
	d := fill(ts(4, 9), domain.SideSell, 140, 1, 0)

	forward := MatchFIFO([]domain.Trade{a, b, c, d})
	shuffled := MatchFIFO([]domain.Trade{d, b, a, c})

	require.Len(t, shuffled, 4)
	for i := range forward {
		assert.Equal(t, forward[i].Timestamp, shuffled[i].Timestamp)
		if forward[i].RealizedPnL == nil {
			assert.Nil(t, shuffled[i].RealizedPnL)
			continue
		}
		require.NotNil(t, shuffled[i].RealizedPnL)
		assert.InDelta(t, *forward[i].RealizedPnL, *shuffled[i].RealizedPnL, 1e-9)
	}
}

func TestMatchFIFO_UnmatchedSellPassesThrough(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideSell, 100, 1, 0),
	}

	out := MatchFIFO(trades)
	require.Len(t, out, 1)
	assert.Equal(t, domain.SideSell, out[0].Side)
	assert.Nil(t, out[0].RealizedPnL)
}

func TestMatchFIFO_AllBuysPassThrough(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideBuy, 110, 1, 0),
	}

	out := MatchFIFO(trades)
	require.Len(t, out, 2)
	for _, tr := range out {
		assert.Nil(t, tr.RealizedPnL)
	}
}

func TestMatchFIFO_DoesNotMutateInput(t *testing.T) {
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),
		fill(ts(2, 9), domain.SideSell, 110, 1, 0),
	}

	_ = MatchFIFO(trades)

	assert.Nil(t, trades[0].RealizedPnL)
	assert.Nil(t, trades[1].RealizedPnL)
	assert.Equal(t, domain.SideBuy, trades[0].Side)
}

func TestMatchFIFO_OneSellConsumesOneBuyRegardlessOfQty(t *testing.T) {
	// Documented limitation: a sell for 2 units fully consumes a buy for 1.
	trades := []domain.Trade{
		fill(ts(1, 9), domain.SideBuy, 100, 1, 0),  // notional 100
		fill(ts(2, 9), domain.SideSell, 100, 2, 0), // notional 200
	}

	out := MatchFIFO(trades)
	require.NotNil(t, out[0].RealizedPnL)
	assert.InDelta(t, 100.0, *out[0].RealizedPnL, 1e-9)
}
