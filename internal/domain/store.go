package domain

import (
	"context"
	"io"
)

// SnapshotStore persists the last successful BotMetrics per bot. The
// aggregator prefers a stored snapshot over the static fallback when a
// pipeline run fails.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, m BotMetrics) error
	// GetSnapshot returns the last stored metrics for botID, or
	// ErrNotFound when the bot has never completed a successful run.
	GetSnapshot(ctx context.Context, botID string) (BotMetrics, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
