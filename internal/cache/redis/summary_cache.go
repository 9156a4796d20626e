package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bkinvest/botboard/internal/domain"
)

// summaryKey is the single key holding the serialized aggregate summary.
const summaryKey = "summary:latest"

// SummaryCache implements domain.SummaryCache as one TTL'd JSON blob.
type SummaryCache struct {
	rdb *redis.Client
}

// NewSummaryCache creates a SummaryCache backed by the given Client.
func NewSummaryCache(c *Client) *SummaryCache {
	return &SummaryCache{rdb: c.Underlying()}
}

// GetSummary returns the cached summary bytes, or domain.ErrNotFound when no
// fresh summary is stored.
func (sc *SummaryCache) GetSummary(ctx context.Context) ([]byte, error) {
	data, err := sc.rdb.Get(ctx, summaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get summary: %w", err)
	}
	return data, nil
}

// SetSummary stores the summary bytes with the given TTL.
func (sc *SummaryCache) SetSummary(ctx context.Context, data []byte, ttl time.Duration) error {
	if err := sc.rdb.Set(ctx, summaryKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set summary: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SummaryCache = (*SummaryCache)(nil)
