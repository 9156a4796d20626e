package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	s3blob "github.com/bkinvest/botboard/internal/blob/s3"
	"github.com/bkinvest/botboard/internal/domain"
	"github.com/bkinvest/botboard/internal/server/ws"
	"github.com/bkinvest/botboard/internal/service"
)

// summaryProvider is the slice of BotService the refresher needs.
type summaryProvider interface {
	Refresh(ctx context.Context) (domain.BotSummary, error)
}

// Refresher drives the periodic pipeline runs. Each cycle it rebuilds the
// summary, pushes it to connected WebSocket clients, and once per UTC day
// archives it to blob storage.
type Refresher struct {
	svc      summaryProvider
	hub      *ws.Hub
	archiver *s3blob.SummaryArchiver // may be nil
	alerter  service.Alerter         // may be nil
	interval time.Duration
	logger   *slog.Logger

	lastArchivedDay string
	now             func() time.Time
}

// NewRefresher creates a Refresher. archiver and alerter are optional.
func NewRefresher(
	svc summaryProvider,
	hub *ws.Hub,
	archiver *s3blob.SummaryArchiver,
	alerter service.Alerter,
	interval time.Duration,
	logger *slog.Logger,
) *Refresher {
	return &Refresher{
		svc:      svc,
		hub:      hub,
		archiver: archiver,
		alerter:  alerter,
		interval: interval,
		logger:   logger.With(slog.String("component", "refresher")),
		now:      time.Now,
	}
}

// Run refreshes immediately, then on every interval tick until the context is
// cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	start := r.now()
	summary, err := r.svc.Refresh(ctx)
	if err != nil {
		// Refresh degrades per bot instead of failing; an error here means
		// the context was cancelled mid-run.
		r.logger.WarnContext(ctx, "refresh aborted", slog.String("error", err.Error()))
		return
	}
	r.logger.InfoContext(ctx, "refresh complete",
		slog.Int("bots", len(summary.Strategies)),
		slog.Duration("elapsed", r.now().Sub(start)),
	)

	r.broadcast(summary)
	r.maybeArchive(ctx, summary)
}

// broadcast pushes the fresh summary to all WebSocket clients using the same
// envelope shape the hub's hello message uses.
func (r *Refresher) broadcast(summary domain.BotSummary) {
	msg, err := json.Marshal(map[string]any{
		"type":    "summary",
		"payload": summary,
	})
	if err != nil {
		r.logger.Error("marshal summary broadcast", slog.String("error", err.Error()))
		return
	}
	r.hub.Broadcast(msg)
}

// maybeArchive writes the summary to blob storage the first time each UTC day
// is seen. Archive failures are alerted but never interrupt refreshing.
func (r *Refresher) maybeArchive(ctx context.Context, summary domain.BotSummary) {
	if r.archiver == nil {
		return
	}
	day := r.now().UTC().Format("2006-01-02")
	if day == r.lastArchivedDay {
		return
	}

	if err := r.archiver.Archive(ctx, summary); err != nil {
		r.logger.ErrorContext(ctx, "summary archive failed",
			slog.String("day", day),
			slog.String("error", err.Error()),
		)
		if r.alerter != nil {
			_ = r.alerter.Notify(ctx, "archive_failed", "Summary archive failed", err.Error())
		}
		return
	}
	r.lastArchivedDay = day
	r.logger.InfoContext(ctx, "summary archived", slog.String("day", day))
}
