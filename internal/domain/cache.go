package domain

import (
	"context"
	"time"
)

// TokenCache stores short-lived upstream credentials (e.g. the KIS OAuth
// access token) with an explicit TTL. It replaces the module-level token
// variables the exchanges' reference clients use, so source adapters stay
// free of hidden state.
type TokenCache interface {
	// GetToken returns the cached token for key, or ErrNotFound when the
	// key is missing or expired.
	GetToken(ctx context.Context, key string) (string, error)
	SetToken(ctx context.Context, key, token string, ttl time.Duration) error
}

// SummaryCache stores the serialized aggregate summary between refreshes so
// dashboard requests don't fan out to the exchanges on every hit.
type SummaryCache interface {
	GetSummary(ctx context.Context) ([]byte, error)
	SetSummary(ctx context.Context, data []byte, ttl time.Duration) error
}

// LoginLimiter throttles authentication attempts per remote address.
type LoginLimiter interface {
	// Allow reports whether another attempt is permitted for id within the
	// window, incrementing the attempt counter as a side effect.
	Allow(ctx context.Context, id string, limit int, window time.Duration) (bool, error)
}
