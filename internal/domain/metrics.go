package domain

import "time"

// Status is the lifecycle state of a bot strategy.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// DisplayTrade is one row of the "recent trades" table, already formatted for
// the dashboard UI.
type DisplayTrade struct {
	Time  string `json:"time"`
	Type  string `json:"type"` // "Buy" or "Sell"
	Price string `json:"price"`
	Qty   string `json:"qty"`
	PnL   string `json:"pnl"` // "+1,234", "-567", or "-" when unmatched
}

// BotMetrics is the full performance report for one bot strategy. It is
// rebuilt from scratch on every refresh and never persisted by the analytics
// engine itself; snapshot storage is an adapter concern.
type BotMetrics struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Asset       string `json:"asset"`
	Exchange    string `json:"exchange"`
	Status      Status `json:"status"`
	StartDate   string `json:"startDate"` // "2006-01-02"

	InitialCapital float64 `json:"initialCapital"`
	CurrentValue   float64 `json:"currentValue"`

	TotalReturn   float64 `json:"totalReturn"`
	MonthlyReturn float64 `json:"monthlyReturn"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	SharpeRatio   float64 `json:"sharpeRatio"`

	WinRate      float64 `json:"winRate"`
	TotalTrades  int     `json:"totalTrades"` // matched sells only
	ProfitTrades int     `json:"profitTrades"`
	LossTrades   int     `json:"lossTrades"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	ProfitFactor float64 `json:"profitFactor"`

	// DailyPnL holds 30 daily buckets as % of initial capital, most recent
	// day last. MonthlyReturns holds 12 calendar-month buckets, current
	// month last. Both are empty on fallback snapshots.
	DailyPnL       []float64 `json:"dailyPnL"`
	MonthlyReturns []float64 `json:"monthlyReturns"`

	// RecentTrades lists the newest 10 trades, newest first.
	RecentTrades []DisplayTrade `json:"recentTrades"`

	// Live is false when this report is a fallback snapshot substituted
	// for a failed pipeline run.
	Live bool `json:"_live"`
}

// BotSummary is the aggregate response produced by one refresh cycle: every
// configured bot in configuration order, live or fallback.
type BotSummary struct {
	Strategies []BotMetrics `json:"strategies"`
	Timestamp  time.Time    `json:"timestamp"`
}
