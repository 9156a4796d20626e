package kis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

func TestOrderNormalize(t *testing.T) {
	o := orderPayload{
		OrderDate:   "20260830",
		OrderTime:   "101500",
		SideCode:    "02",
		AvgPrice:    "71000",
		ExecutedQty: "10",
	}

	trade, ok := o.normalize()
	require.True(t, ok)
	assert.Equal(t, domain.SideBuy, trade.Side)
	assert.Equal(t, 71_000.0, trade.Price)
	assert.Equal(t, 10.0, trade.Quantity)
	assert.InDelta(t, 710_000, trade.Notional, 1e-9)
	assert.Zero(t, trade.Fee)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC), trade.Timestamp)
}

func TestOrderNormalize_Drops(t *testing.T) {
	_, ok := orderPayload{SideCode: "02", AvgPrice: "100", ExecutedQty: "0"}.normalize()
	assert.False(t, ok, "zero executed quantity")

	_, ok = orderPayload{SideCode: "03", AvgPrice: "100", ExecutedQty: "1"}.normalize()
	assert.False(t, ok, "unknown side code")
}

func TestOrderNormalize_SellSide(t *testing.T) {
	trade, ok := orderPayload{OrderDate: "20260830", SideCode: "01", AvgPrice: "100", ExecutedQty: "5"}.normalize()
	require.True(t, ok)
	assert.Equal(t, domain.SideSell, trade.Side)
	// Missing ord_tmd collapses to midnight.
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), trade.Timestamp)
}

func TestParseOrderTime_BadDate(t *testing.T) {
	assert.True(t, parseOrderTime("garbage", "101500").IsZero())
}

func TestTokenExpiry(t *testing.T) {
	assert.Equal(t, 86400*time.Second, tokenResponse{ExpiresIn: "86400"}.expiry())
	assert.Equal(t, 24*time.Hour, tokenResponse{}.expiry())
	assert.Equal(t, 24*time.Hour, tokenResponse{ExpiresIn: "-5"}.expiry())
}
