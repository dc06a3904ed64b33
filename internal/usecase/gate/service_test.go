package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/tier"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

func freeReq() Request {
	return Request{InstallationID: "inst", TriggeredByUser: true, Tier: tier.Free}
}

func TestRequestOpportunities_ProBypassesTracker(t *testing.T) {
	tr := &mockTracker{count: 10, limit: 10}
	src := &mockSource{rows: rowsN(40)}
	g := newTestGate(t, tr, src)

	res := g.RequestOpportunities(context.Background(), Request{TriggeredByUser: true, Tier: tier.Pro})

	if res.Denied {
		t.Fatal("pro must never be denied")
	}
	if tr.recordCalls != 0 || tr.checkCalls != 0 {
		t.Errorf("expected no tracker interaction, got record=%d check=%d", tr.recordCalls, tr.checkCalls)
	}
	if src.fetchCalls != 1 {
		t.Errorf("expected 1 fetch, got %d", src.fetchCalls)
	}
	if len(res.Rows) != 40 {
		t.Errorf("pro must not be truncated, got %d rows", len(res.Rows))
	}
	if !res.Unlimited || res.Status != domopp.StatusOnline {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRequestOpportunities_PassiveFetchNotCharged(t *testing.T) {
	tr := &mockTracker{count: 3, limit: 10}
	g := newTestGate(t, tr, &mockSource{rows: rowsN(20)})

	req := freeReq()
	req.TriggeredByUser = false
	res := g.RequestOpportunities(context.Background(), req)

	if tr.recordCalls != 0 {
		t.Errorf("expected no charge, got %d", tr.recordCalls)
	}
	if res.Denied {
		t.Error("passive fetch must not be denied")
	}
	// remaining 7 -> min(10, 10)
	if len(res.Rows) != 10 {
		t.Errorf("expected 10 rows, got %d", len(res.Rows))
	}
}

func TestRequestOpportunities_PassiveFetchWhenExhaustedStillServes(t *testing.T) {
	tr := &mockTracker{count: 10, limit: 10}
	g := newTestGate(t, tr, &mockSource{rows: rowsN(20)})

	req := freeReq()
	req.TriggeredByUser = false
	res := g.RequestOpportunities(context.Background(), req)

	if res.Denied {
		t.Fatal("passive fetch must not be denied")
	}
	if len(res.Rows) != PreviewAllowance {
		t.Errorf("expected %d preview rows, got %d", PreviewAllowance, len(res.Rows))
	}
}

func TestRequestOpportunities_FreeChargesThenFetches(t *testing.T) {
	tr := &mockTracker{count: 0, limit: 10}
	src := &mockSource{rows: rowsN(50)}
	g := newTestGate(t, tr, src)

	res := g.RequestOpportunities(context.Background(), freeReq())

	if tr.recordCalls != 1 || tr.count != 1 {
		t.Errorf("expected one unit charged, got calls=%d count=%d", tr.recordCalls, tr.count)
	}
	if res.Remaining != 9 || !res.CanAccess {
		t.Errorf("unexpected usage info: %+v", res)
	}
	if len(res.Rows) != 10 {
		t.Errorf("expected min(9+3,10)=10 rows, got %d", len(res.Rows))
	}
	if res.Prompt.ShouldShow {
		t.Errorf("expected no prompt, got %+v", res.Prompt)
	}
}

func TestRequestOpportunities_FreeRemainingTwoShowsFive(t *testing.T) {
	// One charge takes remaining from 3 to 2.
	tr := &mockTracker{count: 7, limit: 10}
	g := newTestGate(t, tr, &mockSource{rows: rowsN(50)})

	res := g.RequestOpportunities(context.Background(), freeReq())

	if res.Remaining != 2 {
		t.Fatalf("expected remaining 2, got %d", res.Remaining)
	}
	if len(res.Rows) != 5 {
		t.Errorf("expected 5 rows, got %d", len(res.Rows))
	}
	if res.Prompt.Kind != domusage.KindLimitWarning {
		t.Errorf("expected warning prompt, got %q", res.Prompt.Kind)
	}
}

func TestRequestOpportunities_DeniedWithoutFetch(t *testing.T) {
	tr := &mockTracker{count: 10, limit: 10}
	src := &mockSource{rows: rowsN(5)}
	g := newTestGate(t, tr, src)

	ctx, trace := domain.NewContextWithTrace(context.Background())
	res := g.RequestOpportunities(ctx, freeReq())

	if !res.Denied {
		t.Fatal("expected denial")
	}
	if src.fetchCalls != 0 {
		t.Errorf("expected no fetch, got %d", src.fetchCalls)
	}
	if tr.recordCalls != 0 {
		t.Errorf("expected no charge on denial, got %d", tr.recordCalls)
	}
	if res.Prompt.Kind != domusage.KindLimitReached {
		t.Errorf("expected LimitReached, got %q", res.Prompt.Kind)
	}
	if len(res.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(res.Rows))
	}
	if trace.Decision != domain.DecisionDenied {
		t.Errorf("expected trace decision denied, got %q", trace.Decision)
	}
}

func TestRequestOpportunities_ChargedEvenWhenFetchFallsBack(t *testing.T) {
	tr := &mockTracker{count: 0, limit: 10}
	src := &mockSource{err: domopp.ErrUnavailable}
	g := newTestGate(t, tr, src)

	ctx, trace := domain.NewContextWithTrace(context.Background())
	res := g.RequestOpportunities(ctx, freeReq())

	if tr.count != 1 {
		t.Errorf("expected charge despite fallback, got count %d", tr.count)
	}
	if res.Status != domopp.StatusOffline {
		t.Errorf("expected offline, got %q", res.Status)
	}
	if len(res.Rows) != len(domopp.Fallback()) || res.Rows[0].Symbol != "PEPE" {
		t.Errorf("expected demo rows, got %+v", res.Rows)
	}
	if !trace.Charged || trace.Status != string(domopp.StatusOffline) {
		t.Errorf("unexpected trace: %+v", trace)
	}
}

func TestRequestOpportunities_LastUnitThenDenied(t *testing.T) {
	tr := &mockTracker{count: 9, limit: 10}
	src := &mockSource{rows: rowsN(10)}
	g := newTestGate(t, tr, src)
	ctx := context.Background()

	first := g.RequestOpportunities(ctx, freeReq())
	if first.Denied || first.Remaining != 0 || first.CanAccess {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Prompt.Kind != domusage.KindLimitReached {
		t.Errorf("expected LimitReached after last unit, got %q", first.Prompt.Kind)
	}
	if len(first.Rows) != PreviewAllowance {
		t.Errorf("expected %d rows, got %d", PreviewAllowance, len(first.Rows))
	}

	second := g.RequestOpportunities(ctx, freeReq())
	if !second.Denied {
		t.Error("expected second request denied")
	}
	if src.fetchCalls != 1 {
		t.Errorf("expected 1 fetch total, got %d", src.fetchCalls)
	}
}

func TestExportCSV_FreeLocked(t *testing.T) {
	src := &mockSource{rows: rowsN(5)}
	g := newTestGate(t, &mockTracker{limit: 10}, src)

	res, err := g.ExportCSV(context.Background(), freeReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Denied || res.Prompt.Kind != domusage.KindFeatureLocked {
		t.Errorf("expected feature-locked denial, got %+v", res)
	}
	if src.fetchCalls != 0 {
		t.Errorf("expected no fetch, got %d", src.fetchCalls)
	}
	if res.Data != nil {
		t.Error("expected no file")
	}
}

func TestExportCSV_ProRendersCappedRows(t *testing.T) {
	exp := &mockExporter{}
	src := &mockSource{rows: rowsN(80)}
	g := New(func(string) QuotaTracker { return &mockTracker{limit: 10} }, src, exp, nil).
		WithClock(func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) })

	res, err := g.ExportCSV(context.Background(), Request{Tier: tier.Pro})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Denied {
		t.Fatal("pro export must not be denied")
	}
	if len(exp.rendered) != domopp.PageSize || res.Rows != domopp.PageSize {
		t.Errorf("expected %d rows, got %d", domopp.PageSize, len(exp.rendered))
	}
	if res.Filename != "export_2026-10-18.csv" || string(res.Data) != "csv" {
		t.Errorf("unexpected export: %+v", res)
	}
}

func TestExportCSV_RenderError(t *testing.T) {
	exp := &mockExporter{err: errors.New("disk full")}
	g := New(func(string) QuotaTracker { return &mockTracker{limit: 10} }, &mockSource{}, exp, nil)

	if _, err := g.ExportCSV(context.Background(), Request{Tier: tier.Pro}); err == nil {
		t.Fatal("expected error")
	}
}

func TestDailyReport(t *testing.T) {
	src := &mockSource{err: domopp.ErrUnavailable}
	g := newTestGate(t, &mockTracker{limit: 10}, src)
	ctx := context.Background()

	locked, err := g.DailyReport(ctx, freeReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locked.Denied || locked.Prompt.Kind != domusage.KindFeatureLocked {
		t.Errorf("expected locked report, got %+v", locked)
	}

	res, err := g.DailyReport(ctx, Request{Tier: tier.Pro})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domopp.StatusOffline || res.Summary.Total != 2 {
		t.Errorf("expected fallback summary, got %+v", res)
	}
}

func TestTokensAndStatsFallback(t *testing.T) {
	g := newTestGate(t, &mockTracker{limit: 10}, &mockSource{err: errors.New("down")})
	ctx := context.Background()

	tokens := g.Tokens(ctx)
	if tokens.Status != domopp.StatusOffline || len(tokens.Tokens) != 5 {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
	stats := g.Stats(ctx)
	if stats.Status != domopp.StatusOffline || stats.Stats.WinRate != 73.2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTokensAndStatsOnline(t *testing.T) {
	src := &mockSource{tokens: []string{"WIF"}, stats: domopp.Stats{Subscribers: 9}}
	g := newTestGate(t, &mockTracker{limit: 10}, src)
	ctx := context.Background()

	if got := g.Tokens(ctx); got.Status != domopp.StatusOnline || got.Tokens[0] != "WIF" {
		t.Errorf("unexpected tokens: %+v", got)
	}
	if got := g.Stats(ctx); got.Status != domopp.StatusOnline || got.Stats.Subscribers != 9 {
		t.Errorf("unexpected stats: %+v", got)
	}
}
