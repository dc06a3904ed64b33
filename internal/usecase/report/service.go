// Package report builds the daily opportunity digest.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	"github.com/kailas-cloud/liquiditick/internal/domain/usage"
	"github.com/kailas-cloud/liquiditick/internal/logger"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
)

const (
	// SourceModel marks a narrative written by the chat model.
	SourceModel = "model"
	// SourceTemplate marks the deterministic fallback narrative.
	SourceTemplate = "template"
)

// Narrator writes a paragraph describing a summary.
type Narrator interface {
	Narrate(ctx context.Context, s report.Summary) (string, error)
}

// Service builds report summaries. A nil narrator always uses the template.
type Service struct {
	narrator Narrator
	timeout  time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone the report date is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithTimeout bounds each narrator call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a report service.
func New(narrator Narrator, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		narrator: narrator,
		loc:      time.Local,
		now:      time.Now,
		logger:   log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Build summarises rows and attaches a narrative. It never fails.
func (s *Service) Build(ctx context.Context, rows []domopp.Row) report.Summary {
	now := s.now()
	sum := report.Summarize(rows)
	sum.Date = usage.Day(now, s.loc)
	sum.GeneratedAt = now

	if s.narrator != nil {
		text, err := s.narrate(ctx, sum)
		if err == nil {
			sum.Narrative = text
			sum.NarrativeSource = SourceModel
			metrics.ReportNarrativesTotal.WithLabelValues(SourceModel).Inc()
			return sum
		}
		logger.FromContextOr(ctx, s.logger).Warn("Report narrative failed, using template", zap.Error(err))
	}

	sum.Narrative = Template(sum)
	sum.NarrativeSource = SourceTemplate
	metrics.ReportNarrativesTotal.WithLabelValues(SourceTemplate).Inc()
	return sum
}

func (s *Service) narrate(ctx context.Context, sum report.Summary) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, err := s.narrator.Narrate(ctx, sum)
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	return text, nil
}

// Template is the deterministic narrative used without a model.
func Template(sum report.Summary) string {
	if sum.Total == 0 {
		return fmt.Sprintf("No opportunities were detected on %s.", sum.Date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d opportunities scanned on %s with an average score of %.1f.",
		sum.Total, sum.Date, sum.AverageScore)
	fmt.Fprintf(&b, " %d scored %.0f or higher and %d are explosive.",
		sum.HighScoreCount, domopp.HighScore, sum.ExplosiveCount)
	if len(sum.Top) > 0 {
		top := sum.Top[0]
		fmt.Fprintf(&b, " Top pick: %s (score %.1f, %+.1f%% in 24h).", top.Symbol, top.Score, top.PriceChange24h)
	}
	return b.String()
}
