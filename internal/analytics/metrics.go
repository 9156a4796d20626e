package analytics

import (
	"math"
	"time"

	"github.com/bkinvest/botboard/internal/domain"
)

const (
	// DefaultAnnualRiskFree is the annual risk-free rate (%) used for the
	// Sharpe ratio when no explicit rate is configured.
	DefaultAnnualRiskFree = 3.5

	// ProfitFactorCap is the sentinel returned when there are winning
	// trades but no losing ones, so the ratio stays finite.
	ProfitFactorCap = 99.99

	monthlyBuckets = 12
	dailyBuckets   = 30
)

// round1 and round2 reproduce the dashboard's display rounding
// (Math.round(x*10)/10 and Math.round(x*100)/100).
func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

// TotalReturn is the sum of realized P&L over matched sells as a percentage
// of initial capital, rounded to 2 decimals. Zero when there are no trades
// or capital is non-positive.
func TotalReturn(trades []domain.Trade, initialCapital float64) float64 {
	if len(trades) == 0 || initialCapital <= 0 {
		return 0
	}
	var total float64
	for _, t := range trades {
		if t.Matched() {
			total += *t.RealizedPnL
		}
	}
	return round2(total / initialCapital * 100)
}

// MaxDrawdown walks the equity curve tracking the running peak and returns
// the most negative peak-to-trough decline as a percentage (2 decimals).
// The result is always <= 0, and exactly 0 when the curve never declines or
// has fewer than two points.
func MaxDrawdown(equityCurve []float64) float64 {
	if len(equityCurve) < 2 {
		return 0
	}
	peak := equityCurve[0]
	maxDD := 0.0
	for _, v := range equityCurve {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		dd := (v - peak) / peak * 100
		if dd < maxDD {
			maxDD = dd
		}
	}
	return round2(maxDD)
}

// SharpeRatio annualizes the risk-adjusted return of a series of daily
// return percentages: sample mean minus the daily risk-free rate
// (annualRiskFree/365), divided by the sample standard deviation (n-1),
// scaled by sqrt(365). Rounded to 2 decimals. Zero with fewer than two data
// points or zero variance.
func SharpeRatio(dailyReturns []float64, annualRiskFree float64) float64 {
	n := len(dailyReturns)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, r := range dailyReturns {
		sum += r
	}
	mean := sum / float64(n)

	var sq float64
	for _, r := range dailyReturns {
		d := r - mean
		sq += d * d
	}
	variance := sq / float64(n-1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	dailyRf := annualRiskFree / 365
	return round2((mean - dailyRf) / std * math.Sqrt(365))
}

// WinLoss carries the win-rate breakdown over matched sells. TotalTrades is
// the matched-sell count, not the raw fill count.
type WinLoss struct {
	WinRate      float64 // percentage, 1 decimal
	ProfitTrades int     // realized pnl > 0
	LossTrades   int     // realized pnl <= 0
	TotalTrades  int
}

// WinStats counts matched sells by P&L sign. All fields are zero when no
// sell was matched.
func WinStats(trades []domain.Trade) WinLoss {
	var wl WinLoss
	for _, t := range trades {
		if !t.Matched() {
			continue
		}
		wl.TotalTrades++
		if *t.RealizedPnL > 0 {
			wl.ProfitTrades++
		} else {
			wl.LossTrades++
		}
	}
	if wl.TotalTrades == 0 {
		return wl
	}
	wl.WinRate = round1(float64(wl.ProfitTrades) / float64(wl.TotalTrades) * 100)
	return wl
}

// ProfitFactor is gross profit divided by gross loss (absolute value) over
// matched sells, rounded to 2 decimals. With no losses it returns
// ProfitFactorCap when there is any profit, otherwise 0 — it never divides
// by zero.
func ProfitFactor(trades []domain.Trade) float64 {
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if !t.Matched() {
			continue
		}
		pnl := *t.RealizedPnL
		if pnl > 0 {
			grossProfit += pnl
		} else if pnl < 0 {
			grossLoss += -pnl
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return ProfitFactorCap
		}
		return 0
	}
	return round2(grossProfit / grossLoss)
}

// AvgWinLoss returns the mean of pnl/notional*100 separately over winning
// (pnl > 0) and losing (pnl < 0) matched sells, each rounded to 1 decimal.
// A side with no trades yields 0.
func AvgWinLoss(trades []domain.Trade) (avgWin, avgLoss float64) {
	var winSum, lossSum float64
	var wins, losses int
	for _, t := range trades {
		if !t.Matched() {
			continue
		}
		notional := t.Notional
		if notional == 0 {
			notional = 1
		}
		pct := *t.RealizedPnL / notional * 100
		if *t.RealizedPnL > 0 {
			winSum += pct
			wins++
		} else if *t.RealizedPnL < 0 {
			lossSum += pct
			losses++
		}
	}
	if wins > 0 {
		avgWin = round1(winSum / float64(wins))
	}
	if losses > 0 {
		avgLoss = round1(lossSum / float64(losses))
	}
	return avgWin, avgLoss
}

// MonthlyReturns buckets matched-sell P&L into the trailing 12 calendar
// months relative to now (index 11 = now's month, index 0 = 11 months ago)
// and expresses each bucket as a percentage of initial capital, 1 decimal.
// Sells older than 12 months or in the future are ignored.
func MonthlyReturns(trades []domain.Trade, initialCapital float64, now time.Time) []float64 {
	months := make([]float64, monthlyBuckets)
	for _, t := range trades {
		if !t.Matched() {
			continue
		}
		d := t.Timestamp
		monthsAgo := (now.Year()-d.Year())*12 + int(now.Month()) - int(d.Month())
		if monthsAgo >= 0 && monthsAgo < monthlyBuckets {
			months[monthlyBuckets-1-monthsAgo] += *t.RealizedPnL
		}
	}
	return toPercentOfCapital(months, initialCapital)
}

// DailyPnL buckets matched-sell P&L into the trailing 30 whole days anchored
// at the end of now's day (index 29 = today), as a percentage of initial
// capital, 1 decimal. Out-of-range sells are ignored.
func DailyPnL(trades []domain.Trade, initialCapital float64, now time.Time) []float64 {
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	days := make([]float64, dailyBuckets)
	for _, t := range trades {
		if !t.Matched() {
			continue
		}
		daysAgo := int(math.Floor(endOfDay.Sub(t.Timestamp).Hours() / 24))
		if daysAgo >= 0 && daysAgo < dailyBuckets {
			days[dailyBuckets-1-daysAgo] += *t.RealizedPnL
		}
	}
	return toPercentOfCapital(days, initialCapital)
}

// toPercentOfCapital converts absolute P&L buckets to percentages of capital
// with 1-decimal rounding. A zero capital falls back to 1 so the conversion
// stays finite.
func toPercentOfCapital(buckets []float64, initialCapital float64) []float64 {
	capital := initialCapital
	if capital == 0 {
		capital = 1
	}
	out := make([]float64, len(buckets))
	for i, pnl := range buckets {
		out[i] = round1(pnl / capital * 100)
	}
	return out
}

// NonZero filters a return series down to its non-zero entries; the Sharpe
// ratio is computed over days that actually traded.
func NonZero(returns []float64) []float64 {
	out := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r != 0 {
			out = append(out, r)
		}
	}
	return out
}
