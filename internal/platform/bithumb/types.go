package bithumb

import (
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

// accountPayload is one entry of the /v1/accounts response.
type accountPayload struct {
	Currency    string `json:"currency"`
	Balance     string `json:"balance"`
	Locked      string `json:"locked"`
	AvgBuyPrice string `json:"avg_buy_price"`
}

// orderPayload is one entry of the /v1/orders response.
type orderPayload struct {
	UUID            string `json:"uuid"`
	Side            string `json:"side"`
	OrdType         string `json:"ord_type"`
	Price           string `json:"price"`
	State           string `json:"state"`
	Volume          string `json:"volume"`
	RemainingVolume string `json:"remaining_volume"`
	ExecutedVolume  string `json:"executed_volume"`
	TradesCount     int    `json:"trades_count"`
	CreatedAt       string `json:"created_at"`
	PaidFee         string `json:"paid_fee"`
}

// tickerResponse is the /public/ticker/{pair} response envelope.
type tickerResponse struct {
	Status string `json:"status"`
	Data   struct {
		ClosingPrice string `json:"closing_price"`
	} `json:"data"`
}

// normalize converts an executed order into a domain trade. Orders with no
// executed volume or an unknown side are dropped.
func (o orderPayload) normalize() (domain.Trade, bool) {
	executed := parseF64(o.ExecutedVolume)
	if executed <= 0 {
		return domain.Trade{}, false
	}

	var side domain.Side
	switch o.Side {
	case "bid":
		side = domain.SideBuy
	case "ask":
		side = domain.SideSell
	default:
		return domain.Trade{}, false
	}

	price := parseF64(o.Price)
	return domain.Trade{
		Timestamp: parseOrderTime(o.CreatedAt),
		Side:      side,
		Price:     price,
		Quantity:  executed,
		Notional:  price * executed,
		Fee:       parseF64(o.PaidFee),
	}, true
}

// parseOrderTime parses the order created_at, which arrives as RFC 3339
// with a zone offset but occasionally without one.
func parseOrderTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
