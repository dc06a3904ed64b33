package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// --- Mock ---

type mockRecordStore struct {
	mu      sync.Mutex
	records map[string]domusage.Record
	lists   map[string][]string
	strings map[string]string

	loadErr error
	saveErr error
	saves   int
	deleted []string
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{
		records: make(map[string]domusage.Record),
		lists:   make(map[string][]string),
		strings: make(map[string]string),
	}
}

func (m *mockRecordStore) Load(_ context.Context, key string) (domusage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domusage.Record{}, m.loadErr
	}
	rec, ok := m.records[key]
	if !ok {
		return domusage.Record{}, db.ErrKeyNotFound
	}
	return rec, nil
}

func (m *mockRecordStore) Save(_ context.Context, key string, rec domusage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[key] = rec
	return nil
}

func (m *mockRecordStore) LoadEmails(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists[key]...), nil
}

func (m *mockRecordStore) SaveEmails(_ context.Context, key string, emails []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([]string(nil), emails...)
	return nil
}

func (m *mockRecordStore) LoadString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strings[key], nil
}

func (m *mockRecordStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.records, k)
		delete(m.lists, k)
		delete(m.strings, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func (m *mockRecordStore) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[key].Count
}

// --- Helpers ---

var errStorage = errors.New("storage unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testLimit = 10

var testKeys = domain.NewInstallationKeys("", "inst-1")

func newTestTracker(t *testing.T) (*Tracker, *mockRecordStore, *fakeClock) {
	t.Helper()
	store := newMockRecordStore()
	clock := &fakeClock{now: time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)}
	tr := NewTracker(store, testKeys, testLimit,
		WithClock(clock.Now),
		WithLocation(time.UTC),
	)
	return tr, store, clock
}
