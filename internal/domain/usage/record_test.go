package usage

import (
	"testing"
	"time"
)

func TestFresh(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC) // 01:30 next day in UTC+3

	r := Fresh(now, loc)
	if r.Date != "2026-03-15" {
		t.Errorf("Date = %q, want 2026-03-15", r.Date)
	}
	if r.Count != 0 {
		t.Errorf("Count = %d, want 0", r.Count)
	}
	if !r.LastReset.Equal(now) {
		t.Errorf("LastReset = %v, want %v", r.LastReset, now)
	}
}

func TestDay_NilLocationUsesLocal(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.Local)
	if got := Day(now, nil); got != "2026-01-02" {
		t.Errorf("Day = %q", got)
	}
}

func TestRecord_Remaining(t *testing.T) {
	tests := []struct {
		count, limit, want int
	}{
		{0, 10, 10},
		{7, 10, 3},
		{10, 10, 0},
		{12, 10, 0},
	}
	for _, tc := range tests {
		r := Record{Count: tc.count}
		if got := r.Remaining(tc.limit); got != tc.want {
			t.Errorf("Remaining(count=%d, limit=%d) = %d, want %d", tc.count, tc.limit, got, tc.want)
		}
	}
}

func TestRecord_IsFor(t *testing.T) {
	r := Record{Date: "2026-05-01"}
	if !r.IsFor("2026-05-01") {
		t.Error("expected record to match its own day")
	}
	if r.IsFor("2026-05-02") {
		t.Error("expected mismatch for next day")
	}
}
