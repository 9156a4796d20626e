package coinone

import (
	"strconv"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

// balancesResponse is the /v2.1/account/balance/all envelope.
type balancesResponse struct {
	Result    string           `json:"result"`
	ErrorCode string           `json:"error_code"`
	ErrorMsg  string           `json:"error_msg"`
	Balances  []balancePayload `json:"balances"`
}

type balancePayload struct {
	Currency  string `json:"currency"`
	Available string `json:"available"`
	Limit     string `json:"limit"`
}

// completedOrdersResponse is the /v2.1/order/completed_orders envelope.
type completedOrdersResponse struct {
	Result          string         `json:"result"`
	ErrorCode       string         `json:"error_code"`
	ErrorMsg        string         `json:"error_msg"`
	CompletedOrders []orderPayload `json:"completed_orders"`
}

type orderPayload struct {
	Timestamp string `json:"timestamp"` // unix seconds
	IsAsk     string `json:"is_ask"`    // "0"=buy, "1"=sell
	Price     string `json:"price"`
	Qty       string `json:"qty"`
	Fee       string `json:"fee"`
}

// tickerResponse is the /public/v2/ticker_new envelope.
type tickerResponse struct {
	Tickers []struct {
		Last string `json:"last"`
	} `json:"tickers"`
}

// normalize converts a completed order into a domain trade. Orders with an
// unknown side flag are dropped.
func (o orderPayload) normalize() (domain.Trade, bool) {
	var side domain.Side
	switch o.IsAsk {
	case "0":
		side = domain.SideBuy
	case "1":
		side = domain.SideSell
	default:
		return domain.Trade{}, false
	}

	price := parseF64(o.Price)
	qty := parseF64(o.Qty)
	return domain.Trade{
		Timestamp: parseUnixSeconds(o.Timestamp),
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Notional:  price * qty,
		Fee:       parseF64(o.Fee),
	}, true
}

func parseUnixSeconds(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// parseF64 parses an API decimal string, treating anything unparseable as
// zero.
func parseF64(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
