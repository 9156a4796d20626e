package domain

import "context"

// BotSpec is the static identity and capital configuration of one bot
// strategy. It comes from configuration, not from the exchange.
type BotSpec struct {
	ID          string
	Name        string
	Description string
	Asset       string
	Exchange    string

	// StartDate is the fallback start date ("2006-01-02") used when no
	// trade history is available to derive one.
	StartDate string

	// InitialCapital is the deposited capital in the quote currency.
	InitialCapital float64

	// EstimateCapital derives initial capital as current account value
	// minus realized P&L instead of using InitialCapital, clamped below
	// at CapitalFloor. Used for accounts without a clean deposit record.
	EstimateCapital bool
	CapitalFloor    float64

	// QtyPrecision is the number of decimals used when formatting trade
	// quantities for display (6 for BTC, 0 for equities).
	QtyPrecision int
}

// TradeSource fetches raw activity for one bot from its exchange and returns
// it in canonical form. Implementations live in internal/platform and own all
// source-specific parsing; malformed records are dropped there, never
// surfaced as errors.
type TradeSource interface {
	// FetchTrades returns the bot's fills in no particular order.
	FetchTrades(ctx context.Context) ([]Trade, error)
	// FetchAccount returns the current account valuation.
	FetchAccount(ctx context.Context) (AccountSnapshot, error)
}
