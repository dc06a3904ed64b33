// Package usage implements the freemium daily quota tracker.
package usage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// DefaultDailyLimit is the free-tier allowance.
const DefaultDailyLimit = 10

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the zone whose calendar day bounds the quota.
func WithLocation(loc *time.Location) TrackerOption {
	return func(t *Tracker) { t.loc = loc }
}

// WithLogger attaches a logger for storage failures.
func WithLogger(l *zap.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// WithLocker serialises load-modify-store sequences through l.
func WithLocker(l sync.Locker) TrackerOption {
	return func(t *Tracker) { t.mu = l }
}

// Tracker owns the daily usage record of one installation.
// Storage failures are logged and never returned: an unreadable record is
// treated as absent, a failed write still yields the computed record.
type Tracker struct {
	store      RecordStore
	keys       domain.InstallationKeys
	dailyLimit int
	now        func() time.Time
	loc        *time.Location
	mu         sync.Locker
	logger     *zap.Logger
}

// NewTracker creates a tracker over keys with the given daily limit.
func NewTracker(store RecordStore, keys domain.InstallationKeys, dailyLimit int, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:      store,
		keys:       keys,
		dailyLimit: max(0, dailyLimit),
		now:        time.Now,
		loc:        time.Local,
		mu:         &sync.Mutex{},
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// DailyLimit returns the configured allowance.
func (t *Tracker) DailyLimit() int { return t.dailyLimit }

// StorageKey returns the key holding the usage record.
func (t *Tracker) StorageKey() string { return t.keys.Usage }

// TodayUsage returns today's record, replacing a stale or missing one.
func (t *Tracker) TodayUsage(ctx context.Context) domusage.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.todayUsage(ctx)
}

// CanAccess reports whether another gated access is allowed today.
func (t *Tracker) CanAccess(ctx context.Context) bool {
	return t.TodayUsage(ctx).Count < t.dailyLimit
}

// RemainingCount returns the accesses left today.
func (t *Tracker) RemainingCount(ctx context.Context) int {
	return t.TodayUsage(ctx).Remaining(t.dailyLimit)
}

// RecordUsage consumes one unit. Once the limit is reached it is a no-op.
func (t *Tracker) RecordUsage(ctx context.Context) domusage.Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.todayUsage(ctx)
	if rec.Count >= t.dailyLimit {
		t.logger.Debug("Usage already at limit, not recording",
			zap.String("key", t.keys.Usage),
			zap.Int("count", rec.Count),
		)
		return rec
	}

	rec.Count++
	t.save(ctx, rec)
	return rec
}

// ResetUsage force-writes a fresh record for today.
func (t *Tracker) ResetUsage(ctx context.Context) domusage.Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := domusage.Fresh(t.now(), t.loc)
	t.save(ctx, rec)
	return rec
}

// UpgradePrompt derives the upgrade messaging from today's remaining count.
func (t *Tracker) UpgradePrompt(ctx context.Context) domusage.Prompt {
	return domusage.PromptFor(t.RemainingCount(ctx), t.dailyLimit)
}

// ClearAllData removes every key owned by this installation.
func (t *Tracker) ClearAllData(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Delete(ctx, t.keys.All()...); err != nil {
		t.logger.Warn("Failed to clear usage data", zap.String("key", t.keys.Usage), zap.Error(err))
	}
}

// SaveEmailForReports records an address for report delivery.
// It returns false for strings without "@"; duplicates are accepted once.
func (t *Tracker) SaveEmailForReports(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	emails, err := t.store.LoadEmails(ctx, t.keys.Emails)
	if err != nil {
		t.logger.Warn("Failed to load captured emails", zap.String("key", t.keys.Emails), zap.Error(err))
		emails = nil
	}
	if slices.Contains(emails, email) {
		return true
	}

	emails = append(emails, email)
	if err := t.store.SaveEmails(ctx, t.keys.Emails, emails); err != nil {
		t.logger.Warn("Failed to save captured emails", zap.String("key", t.keys.Emails), zap.Error(err))
	}
	return true
}

// EmailPreference returns the stored report preference, or "".
func (t *Tracker) EmailPreference(ctx context.Context) string {
	v, err := t.store.LoadString(ctx, t.keys.EmailReports)
	if err != nil {
		t.logger.Warn("Failed to load email preference", zap.String("key", t.keys.EmailReports), zap.Error(err))
		return ""
	}
	return v
}

// DebugInfo snapshots the tracker state.
func (t *Tracker) DebugInfo(ctx context.Context) domusage.Debug {
	t.mu.Lock()
	rec := t.todayUsage(ctx)
	t.mu.Unlock()

	emails, err := t.store.LoadEmails(ctx, t.keys.Emails)
	if err != nil {
		t.logger.Warn("Failed to load captured emails", zap.String("key", t.keys.Emails), zap.Error(err))
	}
	if emails == nil {
		emails = []string{}
	}

	return domusage.Debug{
		Current:    rec,
		CanAccess:  rec.Count < t.dailyLimit,
		Remaining:  rec.Remaining(t.dailyLimit),
		DailyLimit: t.dailyLimit,
		Today:      domusage.Day(t.now(), t.loc),
		StorageKey: t.keys.Usage,
		Emails:     emails,
	}
}

// todayUsage is the sole lazy reset path. Caller holds t.mu.
func (t *Tracker) todayUsage(ctx context.Context) domusage.Record {
	now := t.now()
	today := domusage.Day(now, t.loc)

	rec, err := t.store.Load(ctx, t.keys.Usage)
	switch {
	case err != nil:
		if !errors.Is(err, db.ErrKeyNotFound) {
			t.logger.Warn("Usage record unreadable, reinitialising",
				zap.String("key", t.keys.Usage),
				zap.Error(err),
			)
		}
	case rec.IsFor(today):
		return rec
	default:
		t.logger.Debug("New day detected, resetting usage",
			zap.String("key", t.keys.Usage),
			zap.String("stored_date", rec.Date),
			zap.String("today", today),
		)
	}

	fresh := domusage.Fresh(now, t.loc)
	t.save(ctx, fresh)
	return fresh
}

func (t *Tracker) save(ctx context.Context, rec domusage.Record) {
	if err := t.store.Save(ctx, t.keys.Usage, rec); err != nil {
		t.logger.Warn("Failed to persist usage record",
			zap.String("key", t.keys.Usage),
			zap.Int("count", rec.Count),
			zap.Error(err),
		)
	}
}
