// Package service contains the aggregation layer between the exchange
// adapters and the HTTP API: per-bot pipelines, the settle-all aggregator,
// and its fallback and caching behavior.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bkinvest/botboard/internal/analytics"
	"github.com/bkinvest/botboard/internal/domain"
)

// Alerter is the subset of the notifier the aggregator needs. A nil Alerter
// disables alerts.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// BotService aggregates every configured bot into one dashboard summary.
// Pipelines run concurrently and are isolated from each other: one bot's
// failure never blocks or degrades the others.
type BotService struct {
	pipelines []Pipeline
	snapshots domain.SnapshotStore // may be nil
	cache     domain.SummaryCache  // may be nil
	alerter   Alerter              // may be nil
	cacheTTL  time.Duration
	logger    *slog.Logger

	// now is the clock for windowed metrics, overridable in tests.
	now func() time.Time
}

// NewBotService creates the aggregator. snapshots, cache, and alerter are
// optional; pass nil to disable snapshot fallback, summary caching, or
// failure alerts respectively.
func NewBotService(
	pipelines []Pipeline,
	snapshots domain.SnapshotStore,
	cache domain.SummaryCache,
	alerter Alerter,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *BotService {
	return &BotService{
		pipelines: pipelines,
		snapshots: snapshots,
		cache:     cache,
		alerter:   alerter,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary returns the aggregate report, served from the summary cache when
// a fresh copy exists, otherwise rebuilt via Refresh.
func (s *BotService) Summary(ctx context.Context) (domain.BotSummary, error) {
	if s.cache != nil {
		if data, err := s.cache.GetSummary(ctx); err == nil {
			var summary domain.BotSummary
			if err := json.Unmarshal(data, &summary); err == nil {
				return summary, nil
			}
			s.logger.WarnContext(ctx, "bot_service: discarding corrupt cached summary")
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "bot_service: summary cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return s.Refresh(ctx)
}

// Refresh runs every pipeline concurrently and assembles the summary in
// configuration order. It never fails as a whole: each failed pipeline is
// replaced by its last stored snapshot, or by a static fallback when none
// exists, with the live flag cleared either way.
func (s *BotService) Refresh(ctx context.Context) (domain.BotSummary, error) {
	results := make([]domain.BotMetrics, len(s.pipelines))

	var wg sync.WaitGroup
	for i := range s.pipelines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &s.pipelines[i]

			report, err := p.Run(ctx, s.now())
			if err == nil {
				results[i] = report
				s.saveSnapshot(ctx, report)
				return
			}

			s.logger.ErrorContext(ctx, "bot_service: pipeline failed",
				slog.String("bot", p.Spec.ID),
				slog.String("error", err.Error()),
			)
			s.alert(ctx, p.Spec, err)
			results[i] = s.fallback(ctx, p.Spec)
		}(i)
	}
	wg.Wait()

	summary := domain.BotSummary{
		Strategies: results,
		Timestamp:  s.now(),
	}

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.SetSummary(ctx, data, s.cacheTTL); err != nil {
				s.logger.WarnContext(ctx, "bot_service: summary cache write failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return summary, nil
}

// Bot runs a single bot's pipeline by ID, with the same fallback behavior
// as Refresh. Unknown IDs return ErrNotFound.
func (s *BotService) Bot(ctx context.Context, id string) (domain.BotMetrics, error) {
	for i := range s.pipelines {
		p := &s.pipelines[i]
		if p.Spec.ID != id {
			continue
		}

		report, err := p.Run(ctx, s.now())
		if err == nil {
			s.saveSnapshot(ctx, report)
			return report, nil
		}

		s.logger.ErrorContext(ctx, "bot_service: pipeline failed",
			slog.String("bot", id),
			slog.String("error", err.Error()),
		)
		s.alert(ctx, p.Spec, err)
		return s.fallback(ctx, p.Spec), nil
	}
	return domain.BotMetrics{}, fmt.Errorf("bot_service: bot %q: %w", id, domain.ErrNotFound)
}

// fallback returns the bot's last stored snapshot, or the static zero
// snapshot when none is stored. Either way the live flag is cleared.
func (s *BotService) fallback(ctx context.Context, spec domain.BotSpec) domain.BotMetrics {
	if s.snapshots != nil {
		stored, err := s.snapshots.GetSnapshot(ctx, spec.ID)
		if err == nil {
			stored.Live = false
			return stored
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "bot_service: snapshot read failed",
				slog.String("bot", spec.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return analytics.FallbackMetrics(spec)
}

func (s *BotService) saveSnapshot(ctx context.Context, m domain.BotMetrics) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveSnapshot(ctx, m); err != nil {
		s.logger.WarnContext(ctx, "bot_service: snapshot write failed",
			slog.String("bot", m.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BotService) alert(ctx context.Context, spec domain.BotSpec, runErr error) {
	if s.alerter == nil {
		return
	}
	title := fmt.Sprintf("Pipeline failed: %s", spec.Name)
	msg := fmt.Sprintf("Bot %s (%s) failed to refresh: %v", spec.ID, spec.Exchange, runErr)
	if err := s.alerter.Notify(ctx, "pipeline_failed", title, msg); err != nil {
		s.logger.WarnContext(ctx, "bot_service: alert failed",
			slog.String("error", err.Error()),
		)
	}
}
