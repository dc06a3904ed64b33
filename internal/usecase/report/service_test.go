package report

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGateMetrics()
	os.Exit(m.Run())
}

// --- Mock ---

type mockNarrator struct {
	text  string
	err   error
	calls int
	got   report.Summary
}

func (m *mockNarrator) Narrate(_ context.Context, s report.Summary) (string, error) {
	m.calls++
	m.got = s
	return m.text, m.err
}

type slowNarrator struct{}

func (slowNarrator) Narrate(ctx context.Context, _ report.Summary) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// --- Tests ---

var fixedNow = time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)

func newTestService(n Narrator, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC)}, opts...)
	return New(n, nil, opts...)
}

func TestBuild_ModelNarrative(t *testing.T) {
	n := &mockNarrator{text: "Memecoins led."}
	svc := newTestService(n)

	before := testutil.ToFloat64(metrics.ReportNarrativesTotal.WithLabelValues(SourceModel))
	sum := svc.Build(context.Background(), domopp.Fallback())

	if sum.Narrative != "Memecoins led." || sum.NarrativeSource != SourceModel {
		t.Errorf("unexpected narrative: %q (%s)", sum.Narrative, sum.NarrativeSource)
	}
	if sum.Date != "2026-10-18" {
		t.Errorf("unexpected date: %s", sum.Date)
	}
	if !sum.GeneratedAt.Equal(fixedNow) {
		t.Errorf("unexpected generatedAt: %v", sum.GeneratedAt)
	}
	if n.got.Total != 2 || n.got.Date != "2026-10-18" {
		t.Errorf("narrator received incomplete summary: %+v", n.got)
	}
	after := testutil.ToFloat64(metrics.ReportNarrativesTotal.WithLabelValues(SourceModel))
	if after-before != 1 {
		t.Errorf("expected model counter +1, got %v", after-before)
	}
}

func TestBuild_NarratorErrorFallsBack(t *testing.T) {
	svc := newTestService(&mockNarrator{err: errors.New("boom")})

	sum := svc.Build(context.Background(), domopp.Fallback())
	if sum.NarrativeSource != SourceTemplate {
		t.Fatalf("expected template source, got %s", sum.NarrativeSource)
	}
	if !strings.Contains(sum.Narrative, "PEPE") {
		t.Errorf("template should name the top pick: %q", sum.Narrative)
	}
}

func TestBuild_NilNarrator(t *testing.T) {
	sum := newTestService(nil).Build(context.Background(), nil)
	if sum.NarrativeSource != SourceTemplate {
		t.Fatalf("expected template source, got %s", sum.NarrativeSource)
	}
	if sum.Narrative != "No opportunities were detected on 2026-10-18." {
		t.Errorf("unexpected empty-set narrative: %q", sum.Narrative)
	}
}

func TestBuild_NarratorTimeout(t *testing.T) {
	svc := newTestService(slowNarrator{}, WithTimeout(20*time.Millisecond))

	sum := svc.Build(context.Background(), domopp.Fallback())
	if sum.NarrativeSource != SourceTemplate {
		t.Errorf("expected template after timeout, got %s", sum.NarrativeSource)
	}
}

func TestBuild_DateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	svc := newTestService(nil, WithLocation(loc))

	if got := svc.Build(context.Background(), nil).Date; got != "2026-10-19" {
		t.Errorf("expected local date 2026-10-19, got %s", got)
	}
}

func TestTemplate(t *testing.T) {
	sum := report.Summary{
		Date:           "2026-10-18",
		Total:          4,
		HighScoreCount: 2,
		ExplosiveCount: 1,
		AverageScore:   7.5,
		Top:            []domopp.Row{{Symbol: "PEPE", Score: 9.5, PriceChange24h: 87.3}},
	}

	got := Template(sum)
	want := "4 opportunities scanned on 2026-10-18 with an average score of 7.5." +
		" 2 scored 8 or higher and 1 are explosive." +
		" Top pick: PEPE (score 9.5, +87.3% in 24h)."
	if got != want {
		t.Errorf("unexpected template:\n got %q\nwant %q", got, want)
	}
}
