package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bkinvest/botboard/internal/domain"
)

// summaryCacheControl tells the CDN to serve the aggregate for a minute and
// revalidate in the background for another thirty seconds.
const summaryCacheControl = "public, s-maxage=60, stale-while-revalidate=30"

// BotReader is the service surface the bots endpoints need.
type BotReader interface {
	Summary(ctx context.Context) (domain.BotSummary, error)
	Bot(ctx context.Context, id string) (domain.BotMetrics, error)
}

// BotsHandler serves the aggregate and per-bot report endpoints.
type BotsHandler struct {
	bots   BotReader
	logger *slog.Logger
}

// NewBotsHandler creates a BotsHandler with the provided service and logger.
func NewBotsHandler(bots BotReader, logger *slog.Logger) *BotsHandler {
	return &BotsHandler{
		bots:   bots,
		logger: logHandler(logger, "bots"),
	}
}

// List returns the aggregate summary for every configured bot.
// GET /api/bots
func (h *BotsHandler) List(w http.ResponseWriter, r *http.Request) {
	summary, err := h.bots.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "summary failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	w.Header().Set("Cache-Control", summaryCacheControl)
	writeJSON(w, http.StatusOK, summary)
}

// Get returns the report for a single bot.
// GET /api/bots/{id}
func (h *BotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	metrics, err := h.bots.Bot(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown bot: "+id)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "bot report failed",
			slog.String("bot", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}
