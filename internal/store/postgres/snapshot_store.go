package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bkinvest/botboard/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore on the bot_snapshots table.
// Each bot keeps exactly one row, overwritten on every successful refresh.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given Client.
func NewSnapshotStore(c *Client) *SnapshotStore {
	return &SnapshotStore{pool: c.Pool()}
}

// SaveSnapshot upserts the bot's latest report.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, m domain.BotMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("postgres: marshal snapshot %s: %w", m.ID, err)
	}

	const q = `
		INSERT INTO bot_snapshots (bot_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (bot_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, q, m.ID, data); err != nil {
		return fmt.Errorf("postgres: save snapshot %s: %w", m.ID, err)
	}
	return nil
}

// GetSnapshot returns the last stored report for botID, or ErrNotFound when
// the bot has never completed a successful run.
func (s *SnapshotStore) GetSnapshot(ctx context.Context, botID string) (domain.BotMetrics, error) {
	const q = `SELECT data FROM bot_snapshots WHERE bot_id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, q, botID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BotMetrics{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BotMetrics{}, fmt.Errorf("postgres: get snapshot %s: %w", botID, err)
	}

	var m domain.BotMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.BotMetrics{}, fmt.Errorf("postgres: decode snapshot %s: %w", botID, err)
	}
	return m, nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
