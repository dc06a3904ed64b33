package liquiditick

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	domtier "github.com/kailas-cloud/liquiditick/internal/domain/tier"
	gateuc "github.com/kailas-cloud/liquiditick/internal/usecase/gate"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
)

// Installation is the quota and tier state of one client installation.
type Installation struct {
	id      string
	client  *Client
	tracker *usageuc.Tracker
}

// ID returns the installation ID.
func (i *Installation) ID() string { return i.id }

// Usage returns today's record, starting a fresh one on a new day.
func (i *Installation) Usage(ctx context.Context) UsageRecord {
	return recordFromDomain(i.tracker.TodayUsage(ctx))
}

// CanAccess reports whether a metered fetch would be allowed. It never charges.
func (i *Installation) CanAccess(ctx context.Context) bool {
	return i.tracker.CanAccess(ctx)
}

// Remaining returns the units left today.
func (i *Installation) Remaining(ctx context.Context) int {
	return i.tracker.RemainingCount(ctx)
}

// RecordUsage charges one unit. It saturates at the daily limit.
func (i *Installation) RecordUsage(ctx context.Context) UsageRecord {
	start := time.Now()
	rec := i.tracker.RecordUsage(ctx)
	i.client.obs.observe("record_usage", start, nil)
	return recordFromDomain(rec)
}

// Prompt returns the upgrade prompt for the current quota state.
func (i *Installation) Prompt(ctx context.Context) Prompt {
	return promptFromDomain(i.tracker.UpgradePrompt(ctx))
}

// Reset starts a fresh record for today and puts the installation back on Free.
func (i *Installation) Reset(ctx context.Context) (rec UsageRecord, err error) {
	start := time.Now()
	defer func() { i.client.obs.observe("reset", start, err) }()

	rec = recordFromDomain(i.tracker.ResetUsage(ctx))
	if err = i.client.tiers.Set(ctx, i.id, domtier.Free); err != nil {
		return rec, fmt.Errorf("reset tier: %w", err)
	}
	return rec, nil
}

// Clear deletes every persisted key of the installation.
func (i *Installation) Clear(ctx context.Context) {
	start := time.Now()
	i.tracker.ClearAllData(ctx)
	i.client.obs.observe("clear", start, nil)
}

// SaveEmail stores an address for the report mailing list.
// Duplicates are accepted and stored once.
func (i *Installation) SaveEmail(ctx context.Context, email string) error {
	if !i.tracker.SaveEmailForReports(ctx, email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// EmailPreference returns the stored report email preference, or "".
func (i *Installation) EmailPreference(ctx context.Context) string {
	return i.tracker.EmailPreference(ctx)
}

// Debug returns a troubleshooting snapshot.
func (i *Installation) Debug(ctx context.Context) UsageDebug {
	d := i.tracker.DebugInfo(ctx)
	return UsageDebug{
		Current:    recordFromDomain(d.Current),
		CanAccess:  d.CanAccess,
		Remaining:  d.Remaining,
		DailyLimit: d.DailyLimit,
		Today:      d.Today,
		StorageKey: d.StorageKey,
		Emails:     d.Emails,
	}
}

// Tier returns the stored tier. A missing flag is Free.
func (i *Installation) Tier(ctx context.Context) (Tier, error) {
	t, err := i.client.tiers.Get(ctx, i.id)
	if err != nil {
		return TierFree, fmt.Errorf("get tier: %w", err)
	}
	return Tier(t), nil
}

// SetTier stores the tier flag. Unknown values return ErrInvalidTier.
func (i *Installation) SetTier(ctx context.Context, t Tier) (err error) {
	start := time.Now()
	defer func() { i.client.obs.observe("set_tier", start, err) }()

	parsed, err := domtier.ParseStrict(string(t))
	if err != nil {
		return err //nolint:wrapcheck // sentinel already attached
	}
	if err = i.client.tiers.Set(ctx, i.id, parsed); err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	return nil
}

// Opportunities runs the gated fetch. refresh marks an explicit user action,
// which is the only kind of request a Free installation is charged for.
// A refused request returns Result.Denied, not an error.
func (i *Installation) Opportunities(ctx context.Context, f Filters, refresh bool) (res Result, err error) {
	start := time.Now()
	defer func() { i.client.obs.observe("opportunities", start, err) }()

	req, err := i.request(ctx, f, refresh)
	if err != nil {
		return Result{}, err
	}

	ctx, trace := domain.NewContextWithTrace(ctx)
	out := i.client.gate.RequestOpportunities(ctx, req)
	i.client.obs.decision("opportunities", trace.Decision)

	return Result{
		Opportunities: rowsFromDomain(out.Rows),
		Denied:        out.Denied,
		Prompt:        promptFromDomain(out.Prompt),
		Status:        DataStatus(out.Status),
		Remaining:     out.Remaining,
		CanAccess:     out.CanAccess,
		DailyLimit:    out.DailyLimit,
		Unlimited:     out.Unlimited,
	}, nil
}

// ExportCSV renders the current result set as CSV. Pro only;
// Free installations get Export.Denied with a locked-feature prompt.
func (i *Installation) ExportCSV(ctx context.Context, f Filters) (exp Export, err error) {
	start := time.Now()
	defer func() { i.client.obs.observe("export_csv", start, err) }()

	req, err := i.request(ctx, f, false)
	if err != nil {
		return Export{}, err
	}

	ctx, trace := domain.NewContextWithTrace(ctx)
	out, err := i.client.gate.ExportCSV(ctx, req)
	if err != nil {
		return Export{}, fmt.Errorf("export csv: %w", err)
	}
	i.client.obs.decision("export_csv", trace.Decision)

	return Export{
		Denied:      out.Denied,
		Prompt:      promptFromDomain(out.Prompt),
		Status:      DataStatus(out.Status),
		Filename:    out.Filename,
		ContentType: out.ContentType,
		Data:        out.Data,
		Rows:        out.Rows,
	}, nil
}

// DailyReport builds the daily digest. Pro only, gated like ExportCSV.
func (i *Installation) DailyReport(ctx context.Context, f Filters) (rep Report, err error) {
	start := time.Now()
	defer func() { i.client.obs.observe("daily_report", start, err) }()

	req, err := i.request(ctx, f, false)
	if err != nil {
		return Report{}, err
	}

	ctx, trace := domain.NewContextWithTrace(ctx)
	out, err := i.client.gate.DailyReport(ctx, req)
	if err != nil {
		return Report{}, fmt.Errorf("daily report: %w", err)
	}
	i.client.obs.decision("daily_report", trace.Decision)

	if out.Denied {
		return Report{Denied: true, Prompt: promptFromDomain(out.Prompt)}, nil
	}
	rep = reportFromDomain(out.Summary)
	rep.Status = DataStatus(out.Status)
	rep.Prompt = Prompt{Kind: PromptNone}
	return rep, nil
}

func (i *Installation) request(ctx context.Context, f Filters, refresh bool) (gateuc.Request, error) {
	df := filtersToDomain(f)
	if err := df.Validate(); err != nil {
		return gateuc.Request{}, err //nolint:wrapcheck // sentinel already attached
	}
	// An unreadable tier flag is treated as Free, so failures never unlock Pro.
	t, err := i.client.tiers.Get(ctx, i.id)
	if err != nil {
		t = domtier.Free
	}
	return gateuc.Request{
		InstallationID:  i.id,
		TriggeredByUser: refresh,
		Tier:            t,
		Filters:         df,
	}, nil
}
