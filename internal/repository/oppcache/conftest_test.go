package oppcache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/db"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

type mockSource struct {
	rows       []domopp.Row
	tokens     []string
	stats      domopp.Stats
	err        error
	fetchCalls int
	tokenCalls int
}

func (m *mockSource) Fetch(_ context.Context, _ domopp.Filters) ([]domopp.Row, error) {
	m.fetchCalls++
	return m.rows, m.err
}

func (m *mockSource) Tokens(_ context.Context) ([]string, error) {
	m.tokenCalls++
	return m.tokens, m.err
}

func (m *mockSource) Stats(_ context.Context) (domopp.Stats, error) {
	return m.stats, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedSource(t *testing.T, inner *mockSource) (*CachedSource, *mockKVStore, *prometheus.CounterVec) {
	t.Helper()
	ms := &mockKVStore{}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	cs := New(inner, ms, "", time.Minute, counter, zap.NewNop())
	return cs, ms, counter
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func nopLogger() *zap.Logger { return zap.NewNop() }
