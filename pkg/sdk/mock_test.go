package liquiditick

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// --- Source mock ---

type mockSource struct {
	mu      sync.Mutex
	rows    []Opportunity
	tokens  []string
	stats   Stats
	err     error
	fetches int
	last    Filters
}

func newMockSource(n int) *mockSource {
	rows := make([]Opportunity, n)
	for i := range rows {
		rows[i] = Opportunity{
			Rank:      i + 1,
			Score:     10 - float64(i)*0.25,
			Symbol:    fmt.Sprintf("TOK%d", i),
			Name:      fmt.Sprintf("Token %d", i),
			Volume24h: 1000,
			Type:      TypeMomentum,
			Signals:   []string{"volume spike"},
		}
	}
	return &mockSource{
		rows:   rows,
		tokens: []string{"TOK0", "TOK1"},
		stats:  Stats{WinRate: 0.7, Subscribers: 42},
	}
}

func (m *mockSource) Fetch(_ context.Context, f Filters) ([]Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	m.last = f
	if m.err != nil {
		return nil, m.err
	}
	return append([]Opportunity(nil), m.rows...), nil
}

func (m *mockSource) Tokens(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens, nil
}

func (m *mockSource) Stats(_ context.Context) (Stats, error) {
	if m.err != nil {
		return Stats{}, m.err
	}
	return m.stats, nil
}

func (m *mockSource) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// fixedNow is noon UTC on a fixed day.
func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}
