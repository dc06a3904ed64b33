package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
)

func TestInstrumentedSource_CountsByStatus(t *testing.T) {
	ok := NewInstrumentedSource(&mockSource{rows: rowsN(2)}, zap.NewNop())
	bad := NewInstrumentedSource(&mockSource{err: errors.New("down")}, zap.NewNop())
	ctx := context.Background()

	onlineBefore := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues("fetch", "online"))
	offlineBefore := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues("fetch", "offline"))

	if _, err := ok.Fetch(ctx, domopp.Filters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bad.Fetch(ctx, domopp.Filters{}); err == nil {
		t.Fatal("expected error to pass through")
	}

	if d := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues("fetch", "online")) - onlineBefore; d != 1 {
		t.Errorf("expected 1 online fetch, got %f", d)
	}
	if d := testutil.ToFloat64(metrics.SourceRequestsTotal.WithLabelValues("fetch", "offline")) - offlineBefore; d != 1 {
		t.Errorf("expected 1 offline fetch, got %f", d)
	}
}

func TestInstrumentedSource_PassesErrorsUnchanged(t *testing.T) {
	src := NewInstrumentedSource(&mockSource{err: domopp.ErrUnavailable}, zap.NewNop())
	ctx := context.Background()

	if _, err := src.Tokens(ctx); !errors.Is(err, domopp.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := src.Stats(ctx); !errors.Is(err, domopp.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
