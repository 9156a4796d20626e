package bithumb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

func TestOrderNormalize(t *testing.T) {
	o := orderPayload{
		Side:           "bid",
		Price:          "50000000",
		ExecutedVolume: "0.01",
		PaidFee:        "1250",
		CreatedAt:      "2026-08-30T10:15:00+09:00",
	}

	trade, ok := o.normalize()
	require.True(t, ok)
	assert.Equal(t, domain.SideBuy, trade.Side)
	assert.Equal(t, 50_000_000.0, trade.Price)
	assert.Equal(t, 0.01, trade.Quantity)
	assert.InDelta(t, 500_000, trade.Notional, 1e-9)
	assert.Equal(t, 1250.0, trade.Fee)
	assert.Equal(t, 2026, trade.Timestamp.Year())
	assert.Nil(t, trade.RealizedPnL)
}

func TestOrderNormalize_Drops(t *testing.T) {
	cases := []struct {
		name string
		o    orderPayload
	}{
		{"zero executed volume", orderPayload{Side: "bid", Price: "100", ExecutedVolume: "0"}},
		{"missing executed volume", orderPayload{Side: "ask", Price: "100"}},
		{"unknown side", orderPayload{Side: "hold", Price: "100", ExecutedVolume: "1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := tc.o.normalize()
			assert.False(t, ok)
		})
	}
}

func TestOrderNormalize_BadNumbersBecomeZero(t *testing.T) {
	o := orderPayload{
		Side:           "ask",
		Price:          "not-a-number",
		ExecutedVolume: "1",
		PaidFee:        "",
	}

	trade, ok := o.normalize()
	require.True(t, ok)
	assert.Equal(t, domain.SideSell, trade.Side)
	assert.Zero(t, trade.Price)
	assert.Zero(t, trade.Notional)
	assert.Zero(t, trade.Fee)
}

func TestParseOrderTime(t *testing.T) {
	got := parseOrderTime("2026-08-30T10:15:00+09:00")
	assert.Equal(t, time.Date(2026, 8, 30, 10, 15, 0, 0, time.FixedZone("", 9*3600)).Unix(), got.Unix())

	assert.Equal(t, time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC), parseOrderTime("2026-08-30T10:15:00"))
	assert.True(t, parseOrderTime("garbage").IsZero())
}

func TestCoinCurrency(t *testing.T) {
	assert.Equal(t, "BTC", coinCurrency("KRW-BTC"))
	assert.Equal(t, "ETH", coinCurrency("KRW-ETH"))
	assert.Equal(t, "BTC", coinCurrency("BTC"))
}
