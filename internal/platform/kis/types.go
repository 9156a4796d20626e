package kis

import (
	"strconv"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

// apiEnvelope is implemented by all KIS response types; rt_cd "0" means
// success.
type apiEnvelope interface {
	returnCode() (code, msg string)
}

// tokenResponse is the /oauth2/tokenP response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // seconds, as a string
}

// expiry returns the token lifetime, defaulting to 24h when the field is
// missing or malformed.
func (t tokenResponse) expiry() time.Duration {
	sec, err := strconv.Atoi(t.ExpiresIn)
	if err != nil || sec <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(sec) * time.Second
}

// balanceResponse is the inquire-balance envelope. Output1 holds per-stock
// holdings, Output2 the account-level summary.
type balanceResponse struct {
	RtCd    string           `json:"rt_cd"`
	Msg1    string           `json:"msg1"`
	Output1 []holdingPayload `json:"output1"`
	Output2 []balanceSummary `json:"output2"`
}

func (r *balanceResponse) returnCode() (string, string) { return r.RtCd, r.Msg1 }

type holdingPayload struct {
	Symbol       string `json:"pdno"`
	Name         string `json:"prdt_name"`
	Quantity     string `json:"hldg_qty"`
	AvgPrice     string `json:"pchs_avg_pric"`
	CurrentPrice string `json:"prpr"`
	EvalAmount   string `json:"evlu_amt"`
}

type balanceSummary struct {
	TotalEval      string `json:"tot_evlu_amt"`
	PurchaseTotal  string `json:"pchs_amt_smtl_amt"`
	ProfitLossSum  string `json:"evlu_pfls_smtl_amt"`
	AvailableCash  string `json:"dnca_tot_amt"`
	SecuritiesEval string `json:"scts_evlu_amt"`
}

// ordersResponse is the inquire-daily-ccld envelope.
type ordersResponse struct {
	RtCd    string         `json:"rt_cd"`
	Msg1    string         `json:"msg1"`
	Output1 []orderPayload `json:"output1"`
}

func (r *ordersResponse) returnCode() (string, string) { return r.RtCd, r.Msg1 }

type orderPayload struct {
	OrderDate   string `json:"ord_dt"`  // yyyymmdd
	OrderTime   string `json:"ord_tmd"` // hhmmss
	SideCode    string `json:"sll_buy_dvsn_cd"`
	AvgPrice    string `json:"avg_prvs"`
	ExecutedQty string `json:"tot_ccld_qty"`
}

// normalize converts an executed order into a domain trade. Orders with no
// executed quantity or an unknown side code are dropped. KIS charges no
// per-fill fee in the paper environment, so Fee is always zero.
func (o orderPayload) normalize() (domain.Trade, bool) {
	qty := parseF64(o.ExecutedQty)
	if qty <= 0 {
		return domain.Trade{}, false
	}

	var side domain.Side
	switch o.SideCode {
	case "02":
		side = domain.SideBuy
	case "01":
		side = domain.SideSell
	default:
		return domain.Trade{}, false
	}

	price := parseF64(o.AvgPrice)
	return domain.Trade{
		Timestamp: parseOrderTime(o.OrderDate, o.OrderTime),
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Notional:  price * qty,
	}, true
}

// parseOrderTime combines the yyyymmdd date and hhmmss time fields. A
// missing time collapses to midnight.
func parseOrderTime(date, hhmmss string) time.Time {
	if len(hhmmss) < 6 {
		hhmmss = "000000"
	}
	t, err := time.Parse("20060102 150405", date+" "+hhmmss)
	if err != nil {
		return time.Time{}
	}
	return t
}
