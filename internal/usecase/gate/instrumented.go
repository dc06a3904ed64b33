package gate

import (
	"context"
	"time"

	"go.uber.org/zap"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
)

// InstrumentedSource wraps a Source with connectivity metrics and logging.
type InstrumentedSource struct {
	inner  Source
	logger *zap.Logger
}

// NewInstrumentedSource wraps a source with observability.
func NewInstrumentedSource(inner Source, logger *zap.Logger) *InstrumentedSource {
	return &InstrumentedSource{inner: inner, logger: logger}
}

// Fetch delegates and records status and duration.
func (p *InstrumentedSource) Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error) {
	start := time.Now()
	rows, err := p.inner.Fetch(ctx, f)
	p.observe("fetch", start, err, zap.Int("rows", len(rows)))
	return rows, err //nolint:wrapcheck // decorator is transparent
}

// Tokens delegates and records status and duration.
func (p *InstrumentedSource) Tokens(ctx context.Context) ([]string, error) {
	start := time.Now()
	tokens, err := p.inner.Tokens(ctx)
	p.observe("tokens", start, err, zap.Int("tokens", len(tokens)))
	return tokens, err //nolint:wrapcheck // decorator is transparent
}

// Stats delegates and records status and duration.
func (p *InstrumentedSource) Stats(ctx context.Context) (domopp.Stats, error) {
	start := time.Now()
	stats, err := p.inner.Stats(ctx)
	p.observe("stats", start, err)
	return stats, err //nolint:wrapcheck // decorator is transparent
}

func (p *InstrumentedSource) observe(op string, start time.Time, err error, fields ...zap.Field) {
	duration := time.Since(start)
	status := domopp.StatusOnline
	if err != nil {
		status = domopp.StatusOffline
	}

	metrics.SourceRequestsTotal.WithLabelValues(op, string(status)).Inc()
	metrics.SourceRequestDuration.WithLabelValues(op).Observe(duration.Seconds())

	fields = append(fields,
		zap.String("operation", op),
		zap.Duration("duration", duration),
	)
	if err != nil {
		p.logger.Debug("Opportunity source call failed", append(fields, zap.Error(err))...)
		return
	}
	p.logger.Debug("Opportunity source call completed", fields...)
}
