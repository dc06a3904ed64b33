package usage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

func TestTodayUsage_FirstAccessCreatesRecord(t *testing.T) {
	tr, store, clock := newTestTracker(t)

	rec := tr.TodayUsage(context.Background())

	if rec.Date != "2026-10-18" || rec.Count != 0 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.LastReset.Equal(clock.Now()) {
		t.Errorf("expected lastReset %v, got %v", clock.Now(), rec.LastReset)
	}
	if store.saves != 1 {
		t.Errorf("expected fresh record persisted once, got %d saves", store.saves)
	}
}

func TestRecordUsage_CountsAndSaturates(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	for n := 1; n <= testLimit; n++ {
		rec := tr.RecordUsage(ctx)
		if rec.Count != n {
			t.Fatalf("after %d calls expected count %d, got %d", n, n, rec.Count)
		}
	}

	for range 3 {
		rec := tr.RecordUsage(ctx)
		if rec.Count != testLimit {
			t.Fatalf("expected saturation at %d, got %d", testLimit, rec.Count)
		}
	}
	if got := store.count(testKeys.Usage); got != testLimit {
		t.Errorf("expected persisted count %d, got %d", testLimit, got)
	}
}

func TestCanAccess_MatchesCountBelowLimit(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	for count := 0; count <= testLimit; count++ {
		want := count < testLimit
		if got := tr.CanAccess(ctx); got != want {
			t.Errorf("count=%d: expected canAccess=%v, got %v", count, want, got)
		}
		if got := tr.RemainingCount(ctx); got != testLimit-count {
			t.Errorf("count=%d: expected remaining=%d, got %d", count, testLimit-count, got)
		}
		tr.RecordUsage(ctx)
	}
}

func TestCanAccess_DoesNotMutate(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RecordUsage(ctx)
	for range 5 {
		tr.CanAccess(ctx)
	}
	if got := store.count(testKeys.Usage); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

func TestTodayUsage_DayRolloverResets(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	store.records[testKeys.Usage] = domusage.Record{
		Date:  "2026-10-17",
		Count: testLimit,
	}

	if !tr.CanAccess(ctx) {
		t.Fatal("expected access after day rollover")
	}
	rec := tr.TodayUsage(ctx)
	if rec.Count != 0 || rec.Date != "2026-10-18" {
		t.Errorf("expected fresh record for today, got %+v", rec)
	}
}

func TestTodayUsage_ResetFollowsLocalDay(t *testing.T) {
	store := newMockRecordStore()
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on the 19th is still the 18th in UTC-5.
	clock := &fakeClock{now: time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)}
	tr := NewTracker(store, testKeys, testLimit, WithClock(clock.Now), WithLocation(loc))
	ctx := context.Background()

	store.records[testKeys.Usage] = domusage.Record{Date: "2026-10-18", Count: 4}
	if got := tr.TodayUsage(ctx).Count; got != 4 {
		t.Fatalf("expected same local day, got count %d", got)
	}

	clock.Advance(3 * time.Hour) // 01:00 on the 19th local
	if got := tr.TodayUsage(ctx).Count; got != 0 {
		t.Errorf("expected reset at local midnight, got count %d", got)
	}
}

func TestTodayUsage_StorageReadFailureReinitialises(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	store.records[testKeys.Usage] = domusage.Record{Date: "2026-10-18", Count: 7}
	store.loadErr = errStorage

	rec := tr.TodayUsage(ctx)
	if rec.Count != 0 {
		t.Errorf("expected reinitialised record, got %+v", rec)
	}
}

func TestRecordUsage_StorageWriteFailureStillReturns(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	store.saveErr = errStorage

	rec := tr.RecordUsage(context.Background())
	if rec.Count != 1 {
		t.Errorf("expected in-memory count 1, got %d", rec.Count)
	}
}

func TestResetUsage(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	for range testLimit + 2 {
		tr.RecordUsage(ctx)
	}

	rec := tr.ResetUsage(ctx)
	if rec.Count != 0 {
		t.Errorf("expected count 0, got %d", rec.Count)
	}
	if !tr.CanAccess(ctx) {
		t.Error("expected access after reset")
	}
	if got := tr.RemainingCount(ctx); got != testLimit {
		t.Errorf("expected remaining %d, got %d", testLimit, got)
	}
}

func TestUpgradePrompt_BoundaryTable(t *testing.T) {
	tests := []struct {
		count    int
		wantKind domusage.Kind
		wantText string
	}{
		{7, domusage.KindNone, ""},
		{8, domusage.KindLimitWarning, "2 opportunities left"},
		{9, domusage.KindLimitWarning, "1 opportunity left"},
		{10, domusage.KindLimitReached, "daily limit of 10"},
	}

	for _, tc := range tests {
		tr, store, _ := newTestTracker(t)
		store.records[testKeys.Usage] = domusage.Record{Date: "2026-10-18", Count: tc.count}

		p := tr.UpgradePrompt(context.Background())
		if p.Kind != tc.wantKind {
			t.Errorf("count=%d: expected kind %q, got %q", tc.count, tc.wantKind, p.Kind)
		}
		if tc.wantText != "" && !strings.Contains(p.Message, tc.wantText) {
			t.Errorf("count=%d: message %q missing %q", tc.count, p.Message, tc.wantText)
		}
	}
}

func TestScenario_FreshInstallExhaustsQuota(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	for range testLimit {
		tr.RecordUsage(ctx)
	}
	if got := tr.RemainingCount(ctx); got != 0 {
		t.Errorf("expected remaining 0, got %d", got)
	}
	if tr.CanAccess(ctx) {
		t.Error("expected canAccess false")
	}
	if got := tr.UpgradePrompt(ctx).Kind; got != domusage.KindLimitReached {
		t.Errorf("expected LimitReached, got %q", got)
	}
	if rec := tr.RecordUsage(ctx); rec.Count != testLimit {
		t.Errorf("expected no overflow, got %d", rec.Count)
	}
}

func TestClearAllData(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RecordUsage(ctx)
	tr.SaveEmailForReports(ctx, "a@b.c")
	tr.ClearAllData(ctx)

	if len(store.deleted) != 4 {
		t.Fatalf("expected 4 keys deleted, got %v", store.deleted)
	}
	if _, ok := store.records[testKeys.Usage]; ok {
		t.Error("expected usage record removed")
	}
	if len(store.lists[testKeys.Emails]) != 0 {
		t.Error("expected emails removed")
	}
}

func TestSaveEmailForReports(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	if tr.SaveEmailForReports(ctx, "not-an-email") {
		t.Error("expected rejection without @")
	}
	if tr.SaveEmailForReports(ctx, "") {
		t.Error("expected rejection of empty string")
	}
	if !tr.SaveEmailForReports(ctx, "trader@example.com") {
		t.Error("expected acceptance")
	}
	if !tr.SaveEmailForReports(ctx, "trader@example.com") {
		t.Error("expected duplicate to be accepted")
	}

	if got := store.lists[testKeys.Emails]; len(got) != 1 {
		t.Errorf("expected deduplicated list, got %v", got)
	}
}

func TestEmailPreference(t *testing.T) {
	tr, store, _ := newTestTracker(t)
	ctx := context.Background()

	if got := tr.EmailPreference(ctx); got != "" {
		t.Errorf("expected empty preference, got %q", got)
	}
	store.strings[testKeys.EmailReports] = "daily"
	if got := tr.EmailPreference(ctx); got != "daily" {
		t.Errorf("expected daily, got %q", got)
	}
}

func TestDebugInfo(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RecordUsage(ctx)
	tr.RecordUsage(ctx)
	tr.SaveEmailForReports(ctx, "a@b.c")

	d := tr.DebugInfo(ctx)
	if d.Current.Count != 2 || d.Remaining != 8 || !d.CanAccess {
		t.Errorf("unexpected debug counts: %+v", d)
	}
	if d.DailyLimit != testLimit || d.Today != "2026-10-18" {
		t.Errorf("unexpected debug limit/day: %+v", d)
	}
	if d.StorageKey != "liquiditick:usage:inst-1" {
		t.Errorf("unexpected storage key: %s", d.StorageKey)
	}
	if len(d.Emails) != 1 {
		t.Errorf("expected 1 email, got %v", d.Emails)
	}
}

func TestNewTracker_NegativeLimitClampsToZero(t *testing.T) {
	tr := NewTracker(newMockRecordStore(), testKeys, -5)
	if tr.CanAccess(context.Background()) {
		t.Error("expected no access with zero limit")
	}
}

func TestService_ConcurrentRecordUsageNoLostIncrements(t *testing.T) {
	store := newMockRecordStore()
	svc := NewService(store, Config{DailyLimit: 100, Location: time.UTC}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Tracker("shared").RecordUsage(ctx)
		}()
	}
	wg.Wait()

	if got := svc.Tracker("shared").TodayUsage(ctx).Count; got != 50 {
		t.Errorf("expected 50 increments, got %d", got)
	}
}

func TestService_Defaults(t *testing.T) {
	svc := NewService(newMockRecordStore(), Config{}, nil)
	if svc.DailyLimit() != DefaultDailyLimit {
		t.Errorf("expected default limit %d, got %d", DefaultDailyLimit, svc.DailyLimit())
	}
	tr := svc.Tracker("abc")
	if tr.StorageKey() != "liquiditick:usage:abc" {
		t.Errorf("unexpected key: %s", tr.StorageKey())
	}
}

func TestService_InstallationsAreIsolated(t *testing.T) {
	svc := NewService(newMockRecordStore(), Config{DailyLimit: 3, Location: time.UTC}, nil)
	ctx := context.Background()

	for range 3 {
		svc.Tracker("a").RecordUsage(ctx)
	}
	if svc.Tracker("a").CanAccess(ctx) {
		t.Error("expected a exhausted")
	}
	if !svc.Tracker("b").CanAccess(ctx) {
		t.Error("expected b unaffected")
	}
}
