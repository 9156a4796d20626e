package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

const (
	recentTradeCount = 10
	displayTimeFmt   = "2006-01-02 15:04"
	dateFmt          = "2006-01-02"
)

// ReportInput bundles everything BuildReport needs for one bot: its static
// identity, the raw normalized fills, the account valuation, and the clock
// (injected so windowed metrics are deterministic under test).
type ReportInput struct {
	Spec    domain.BotSpec
	Trades  []domain.Trade
	Account domain.AccountSnapshot
	Now     time.Time

	// AnnualRiskFree overrides the Sharpe risk-free rate when non-zero.
	AnnualRiskFree float64
}

// BuildReport runs the full pipeline for one bot — FIFO matching, equity
// curve, metric set — and assembles the dashboard report. It is pure: same
// inputs, same report.
func BuildReport(in ReportInput) domain.BotMetrics {
	matched := MatchFIFO(in.Trades)

	var realized float64
	for _, t := range matched {
		if t.Matched() {
			realized += *t.RealizedPnL
		}
	}

	capital := in.Spec.InitialCapital
	if in.Spec.EstimateCapital {
		capital = math.Max(in.Account.CurrentValue-realized, in.Spec.CapitalFloor)
	}

	curve := BuildEquityCurve(matched, capital)
	winLoss := WinStats(matched)
	avgWin, avgLoss := AvgWinLoss(matched)
	daily := DailyPnL(matched, capital, in.Now)
	monthly := MonthlyReturns(matched, capital, in.Now)

	riskFree := in.AnnualRiskFree
	if riskFree == 0 {
		riskFree = DefaultAnnualRiskFree
	}

	currentValue := math.Round(in.Account.CurrentValue)
	if currentValue == 0 {
		currentValue = capital
	}

	return domain.BotMetrics{
		ID:          in.Spec.ID,
		Name:        in.Spec.Name,
		Description: in.Spec.Description,
		Asset:       in.Spec.Asset,
		Exchange:    in.Spec.Exchange,
		Status:      domain.StatusActive,
		StartDate:   startDate(in.Trades, in.Spec.StartDate),

		InitialCapital: capital,
		CurrentValue:   currentValue,

		TotalReturn:   TotalReturn(matched, capital),
		MonthlyReturn: monthlyAverage(monthly),
		MaxDrawdown:   MaxDrawdown(curve),
		SharpeRatio:   SharpeRatio(NonZero(daily), riskFree),

		WinRate:      winLoss.WinRate,
		TotalTrades:  winLoss.TotalTrades,
		ProfitTrades: winLoss.ProfitTrades,
		LossTrades:   winLoss.LossTrades,
		AvgWin:       avgWin,
		AvgLoss:      avgLoss,
		ProfitFactor: ProfitFactor(matched),

		DailyPnL:       daily,
		MonthlyReturns: monthly,
		RecentTrades:   recentTrades(matched, in.Spec.QtyPrecision),
	}
}

// FallbackMetrics is the static zero-activity snapshot substituted when a
// bot's pipeline fails and no stored snapshot exists.
func FallbackMetrics(spec domain.BotSpec) domain.BotMetrics {
	return domain.BotMetrics{
		ID:             spec.ID,
		Name:           spec.Name,
		Description:    spec.Description,
		Asset:          spec.Asset,
		Exchange:       spec.Exchange,
		Status:         domain.StatusActive,
		StartDate:      spec.StartDate,
		InitialCapital: spec.InitialCapital,
		CurrentValue:   spec.InitialCapital,
		DailyPnL:       []float64{},
		MonthlyReturns: []float64{},
		RecentTrades:   []domain.DisplayTrade{},
	}
}

// monthlyAverage is the dashboard's "monthly return" display figure: the
// mean over months that actually traded, 1 decimal.
func monthlyAverage(monthly []float64) float64 {
	var sum float64
	var active int
	for _, r := range monthly {
		sum += r
		if r != 0 {
			active++
		}
	}
	if active == 0 {
		return 0
	}
	return round1(sum / float64(active))
}

// startDate derives the bot's start date from its earliest fill, falling
// back to the configured date when there is no history.
func startDate(trades []domain.Trade, fallback string) string {
	var earliest time.Time
	for _, t := range trades {
		if t.Timestamp.IsZero() {
			continue
		}
		if earliest.IsZero() || t.Timestamp.Before(earliest) {
			earliest = t.Timestamp
		}
	}
	if earliest.IsZero() {
		return fallback
	}
	return earliest.Format(dateFmt)
}

// recentTrades formats the newest fills for the dashboard table. The input
// is already newest-first (MatchFIFO output order).
func recentTrades(matched []domain.Trade, qtyPrecision int) []domain.DisplayTrade {
	n := len(matched)
	if n > recentTradeCount {
		n = recentTradeCount
	}
	out := make([]domain.DisplayTrade, 0, n)
	for _, t := range matched[:n] {
		typ := "Sell"
		if t.Side == domain.SideBuy {
			typ = "Buy"
		}
		pnl := "-"
		if t.Matched() {
			pnl = formatSignedAmount(*t.RealizedPnL)
		}
		out = append(out, domain.DisplayTrade{
			Time:  t.Timestamp.Format(displayTimeFmt),
			Type:  typ,
			Price: formatComma(t.Price),
			Qty:   strconv.FormatFloat(t.Quantity, 'f', qtyPrecision, 64),
			PnL:   pnl,
		})
	}
	return out
}
