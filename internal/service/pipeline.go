package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bkinvest/botboard/internal/analytics"
	"github.com/bkinvest/botboard/internal/domain"
)

// Pipeline binds one bot's static spec to its exchange source. Running it
// produces a complete live report.
type Pipeline struct {
	Spec   domain.BotSpec
	Source domain.TradeSource

	// AnnualRiskFree overrides the Sharpe risk-free rate when non-zero.
	AnnualRiskFree float64
}

// Run fetches the bot's trades and account valuation concurrently, then
// builds the full report. The returned metrics are marked live.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.BotMetrics, error) {
	var (
		trades  []domain.Trade
		account domain.AccountSnapshot
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trades, err = p.Source.FetchTrades(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		account, err = p.Source.FetchAccount(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.BotMetrics{}, fmt.Errorf("pipeline %s: %w", p.Spec.ID, err)
	}

	report := analytics.BuildReport(analytics.ReportInput{
		Spec:           p.Spec,
		Trades:         trades,
		Account:        account,
		Now:            now,
		AnnualRiskFree: p.AnnualRiskFree,
	})
	report.Live = true
	return report, nil
}
