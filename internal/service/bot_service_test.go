package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkinvest/botboard/internal/domain"
)

type stubSource struct {
	trades  []domain.Trade
	account domain.AccountSnapshot
	err     error
	delay   time.Duration
}

func (s *stubSource) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.trades, nil
}

func (s *stubSource) FetchAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	if s.err != nil {
		return domain.AccountSnapshot{}, s.err
	}
	return s.account, nil
}

type memSnapshots struct {
	mu   sync.Mutex
	data map[string]domain.BotMetrics
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{data: map[string]domain.BotMetrics{}}
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, metrics domain.BotMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[metrics.ID] = metrics
	return nil
}

func (m *memSnapshots) GetSnapshot(_ context.Context, botID string) (domain.BotMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics, ok := m.data[botID]
	if !ok {
		return domain.BotMetrics{}, domain.ErrNotFound
	}
	return metrics, nil
}

type memCache struct {
	mu   sync.Mutex
	data []byte
}

func (m *memCache) GetSummary(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, domain.ErrNotFound
	}
	return m.data, nil
}

func (m *memCache) SetSummary(_ context.Context, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

type recordingAlerter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingAlerter) Notify(_ context.Context, event, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func spec(id string) domain.BotSpec {
	return domain.BotSpec{ID: id, Name: id, InitialCapital: 1000, StartDate: "2026-01-01"}
}

func TestRefresh_AllPipelinesSettle(t *testing.T) {
	pipelines := []Pipeline{
		{Spec: spec("a"), Source: &stubSource{account: domain.AccountSnapshot{CurrentValue: 1100}}},
		{Spec: spec("b"), Source: &stubSource{err: errors.New("exchange down")}},
		{Spec: spec("c"), Source: &stubSource{account: domain.AccountSnapshot{CurrentValue: 900}}},
	}
	alerter := &recordingAlerter{}
	svc := NewBotService(pipelines, nil, nil, alerter, time.Minute, testLogger())

	summary, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Strategies, 3)

	// Configuration order is preserved regardless of completion order.
	assert.Equal(t, "a", summary.Strategies[0].ID)
	assert.Equal(t, "b", summary.Strategies[1].ID)
	assert.Equal(t, "c", summary.Strategies[2].ID)

	assert.True(t, summary.Strategies[0].Live)
	assert.False(t, summary.Strategies[1].Live)
	assert.True(t, summary.Strategies[2].Live)

	// The failed bot got the static fallback shape.
	assert.Equal(t, 1000.0, summary.Strategies[1].CurrentValue)
	assert.Empty(t, summary.Strategies[1].RecentTrades)

	assert.Equal(t, []string{"pipeline_failed"}, alerter.events)
}

func TestRefresh_FailedPipelinePrefersStoredSnapshot(t *testing.T) {
	snapshots := newMemSnapshots()
	stored := domain.BotMetrics{ID: "b", CurrentValue: 4242, Live: true}
	require.NoError(t, snapshots.SaveSnapshot(context.Background(), stored))

	pipelines := []Pipeline{
		{Spec: spec("b"), Source: &stubSource{err: errors.New("exchange down")}},
	}
	svc := NewBotService(pipelines, snapshots, nil, nil, time.Minute, testLogger())

	summary, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Strategies, 1)

	got := summary.Strategies[0]
	assert.Equal(t, 4242.0, got.CurrentValue)
	assert.False(t, got.Live, "stored snapshot must be marked stale")
}

func TestRefresh_SuccessStoresSnapshot(t *testing.T) {
	snapshots := newMemSnapshots()
	pipelines := []Pipeline{
		{Spec: spec("a"), Source: &stubSource{account: domain.AccountSnapshot{CurrentValue: 1100}}},
	}
	svc := NewBotService(pipelines, snapshots, nil, nil, time.Minute, testLogger())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	stored, err := snapshots.GetSnapshot(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1100.0, stored.CurrentValue)
}

func TestSummary_ServedFromCache(t *testing.T) {
	cache := &memCache{}
	pipelines := []Pipeline{
		{Spec: spec("a"), Source: &stubSource{account: domain.AccountSnapshot{CurrentValue: 1100}}},
	}
	svc := NewBotService(pipelines, nil, cache, nil, time.Minute, testLogger())

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Strategies, 1)

	// Break the source; the cached summary should still be served.
	pipelines[0].Source.(*stubSource).err = errors.New("exchange down")
	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Strategies[0].CurrentValue, second.Strategies[0].CurrentValue)
	assert.True(t, second.Strategies[0].Live)
}

func TestBot_FallbackAndNotFound(t *testing.T) {
	pipelines := []Pipeline{
		{Spec: spec("a"), Source: &stubSource{err: errors.New("exchange down")}},
	}
	svc := NewBotService(pipelines, nil, nil, nil, time.Minute, testLogger())

	m, err := svc.Bot(context.Background(), "a")
	require.NoError(t, err, "pipeline failure falls back, it does not error")
	assert.False(t, m.Live)

	_, err = svc.Bot(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefresh_SlowPipelineDoesNotBlockOthersResults(t *testing.T) {
	pipelines := []Pipeline{
		{Spec: spec("slow"), Source: &stubSource{delay: 50 * time.Millisecond, account: domain.AccountSnapshot{CurrentValue: 1}}},
		{Spec: spec("fast"), Source: &stubSource{account: domain.AccountSnapshot{CurrentValue: 2}}},
	}
	svc := NewBotService(pipelines, nil, nil, nil, time.Minute, testLogger())

	start := time.Now()
	summary, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// Both ran concurrently: total wall time tracks the slowest, not the sum.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "slow", summary.Strategies[0].ID)
	assert.Equal(t, "fast", summary.Strategies[1].ID)
}
