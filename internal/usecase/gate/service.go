// Package gate decides whether a dashboard request may reach the data source.
package gate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	"github.com/kailas-cloud/liquiditick/internal/domain/tier"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
	"github.com/kailas-cloud/liquiditick/internal/logger"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
)

// PreviewAllowance is how many rows past the remaining quota a Free user may see.
const PreviewAllowance = 3

// Feature names shown in locked-feature prompts.
const (
	FeatureCSVExport   = "CSV Export"
	FeatureDailyReport = "Daily Report"
)

// Operation labels for metrics.
const (
	opOpportunities = "opportunities"
	opExport        = "export_csv"
	opReport        = "daily_report"
)

// Request describes one gated dashboard fetch.
type Request struct {
	InstallationID  string
	TriggeredByUser bool
	Tier            tier.Tier
	Filters         domopp.Filters
}

// Result is what the dashboard renders after a fetch attempt.
// A denied result carries no rows and a prompt; it is not an error.
type Result struct {
	Rows       []domopp.Row
	Denied     bool
	Prompt     domusage.Prompt
	Status     domopp.Status
	Remaining  int
	CanAccess  bool
	DailyLimit int
	Unlimited  bool
}

// ExportResult is a rendered export or a locked-feature prompt.
type ExportResult struct {
	Denied      bool
	Prompt      domusage.Prompt
	Status      domopp.Status
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ReportResult is a daily digest or a locked-feature prompt.
type ReportResult struct {
	Denied  bool
	Prompt  domusage.Prompt
	Status  domopp.Status
	Summary report.Summary
}

// TokensResult lists known token symbols.
type TokensResult struct {
	Tokens []string
	Status domopp.Status
}

// StatsResult carries platform figures.
type StatsResult struct {
	Stats  domopp.Stats
	Status domopp.Status
}

// Service is the access gate.
type Service struct {
	trackers TrackerFactory
	source   Source
	exporter Exporter
	reporter Reporter
	now      func() time.Time
}

// New creates a gate. exporter and reporter may be nil when those features are disabled.
func New(trackers TrackerFactory, source Source, exporter Exporter, reporter Reporter) *Service {
	return &Service{
		trackers: trackers,
		source:   source,
		exporter: exporter,
		reporter: reporter,
		now:      time.Now,
	}
}

// WithClock overrides the time source used for export file names.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RequestOpportunities runs the metered fetch path.
//
// Passive fetches and Pro requests never touch the quota. A user-triggered
// Free request is refused when the quota is spent; otherwise one unit is
// charged before the fetch, so a fetch that falls back still costs a unit.
func (s *Service) RequestOpportunities(ctx context.Context, req Request) Result {
	log := logger.FromContext(ctx).With(zap.String("installation_id", req.InstallationID))
	trace := domain.TraceFromContext(ctx)

	if req.Tier.IsPro() {
		rows, status := s.fetch(ctx, req.Filters)
		metrics.GateDecisionsTotal.WithLabelValues(opOpportunities, domain.DecisionBypass).Inc()
		trace.Record(domain.DecisionBypass, false, string(status), -1)
		return Result{
			Rows:      rows,
			Status:    status,
			CanAccess: true,
			Unlimited: true,
			Prompt:    domusage.NoPrompt,
		}
	}

	tr := s.trackers(req.InstallationID)
	decision := domain.DecisionBypass
	charged := false

	if req.TriggeredByUser {
		if !tr.CanAccess(ctx) {
			prompt := tr.UpgradePrompt(ctx)
			metrics.GateDecisionsTotal.WithLabelValues(opOpportunities, domain.DecisionDenied).Inc()
			trace.Record(domain.DecisionDenied, false, "", 0)
			log.Info("Daily quota exhausted, fetch refused")
			return Result{
				Denied:     true,
				Prompt:     prompt,
				Remaining:  0,
				CanAccess:  false,
				DailyLimit: tr.DailyLimit(),
			}
		}
		rec := tr.RecordUsage(ctx)
		metrics.UsageChargedTotal.Inc()
		decision = domain.DecisionAllowed
		charged = true
		log.Debug("Usage recorded", zap.Int("count", rec.Count))
	}

	rows, status := s.fetch(ctx, req.Filters)

	remaining := tr.RemainingCount(ctx)
	limit := tr.DailyLimit()
	rows = truncate(rows, min(remaining+PreviewAllowance, limit))

	metrics.GateDecisionsTotal.WithLabelValues(opOpportunities, decision).Inc()
	trace.Record(decision, charged, string(status), remaining)

	return Result{
		Rows:       rows,
		Status:     status,
		Prompt:     domusage.PromptFor(remaining, limit),
		Remaining:  remaining,
		CanAccess:  remaining > 0,
		DailyLimit: limit,
	}
}

// ExportCSV renders the current result set for Pro installations.
func (s *Service) ExportCSV(ctx context.Context, req Request) (ExportResult, error) {
	trace := domain.TraceFromContext(ctx)

	if !req.Tier.IsPro() {
		metrics.GateDecisionsTotal.WithLabelValues(opExport, domain.DecisionDenied).Inc()
		trace.Record(domain.DecisionDenied, false, "", -1)
		return ExportResult{
			Denied: true,
			Prompt: domusage.FeatureLockedPrompt(FeatureCSVExport),
		}, nil
	}
	if s.exporter == nil {
		return ExportResult{}, errors.New("csv export not configured")
	}

	rows, status := s.fetch(ctx, req.Filters)
	rows = truncate(rows, domopp.PageSize)

	data, err := s.exporter.Render(rows)
	if err != nil {
		return ExportResult{}, err //nolint:wrapcheck // exporter errors are already descriptive
	}

	metrics.GateDecisionsTotal.WithLabelValues(opExport, domain.DecisionBypass).Inc()
	trace.Record(domain.DecisionBypass, false, string(status), -1)

	return ExportResult{
		Status:      status,
		Filename:    s.exporter.Filename(s.now()),
		ContentType: s.exporter.ContentType(),
		Data:        data,
		Rows:        len(rows),
	}, nil
}

// DailyReport builds the digest for Pro installations.
func (s *Service) DailyReport(ctx context.Context, req Request) (ReportResult, error) {
	trace := domain.TraceFromContext(ctx)

	if !req.Tier.IsPro() {
		metrics.GateDecisionsTotal.WithLabelValues(opReport, domain.DecisionDenied).Inc()
		trace.Record(domain.DecisionDenied, false, "", -1)
		return ReportResult{
			Denied: true,
			Prompt: domusage.FeatureLockedPrompt(FeatureDailyReport),
		}, nil
	}
	if s.reporter == nil {
		return ReportResult{}, errors.New("daily report not configured")
	}

	rows, status := s.fetch(ctx, req.Filters)

	metrics.GateDecisionsTotal.WithLabelValues(opReport, domain.DecisionBypass).Inc()
	trace.Record(domain.DecisionBypass, false, string(status), -1)

	return ReportResult{
		Status:  status,
		Summary: s.reporter.Build(ctx, rows),
	}, nil
}

// Tokens lists distinct symbols, falling back to a fixed list while offline.
func (s *Service) Tokens(ctx context.Context) TokensResult {
	tokens, err := s.source.Tokens(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Token list unavailable, using fallback", zap.Error(err))
		return TokensResult{Tokens: domopp.FallbackTokens(), Status: domopp.StatusOffline}
	}
	return TokensResult{Tokens: tokens, Status: domopp.StatusOnline}
}

// Stats returns platform figures, falling back to fixed values while offline.
func (s *Service) Stats(ctx context.Context) StatsResult {
	stats, err := s.source.Stats(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Platform stats unavailable, using fallback", zap.Error(err))
		return StatsResult{Stats: domopp.FallbackStats(), Status: domopp.StatusOffline}
	}
	return StatsResult{Stats: stats, Status: domopp.StatusOnline}
}

// fetch never fails: any source error substitutes the demo rows.
func (s *Service) fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, domopp.Status) {
	rows, err := s.source.Fetch(ctx, f)
	if err != nil {
		logger.FromContext(ctx).Warn("Opportunity source unavailable, using demo data", zap.Error(err))
		return domopp.Fallback(), domopp.StatusOffline
	}
	return rows, domopp.StatusOnline
}

func truncate(rows []domopp.Row, n int) []domopp.Row {
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
