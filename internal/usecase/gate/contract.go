package gate

import (
	"context"
	"time"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// QuotaTracker is the slice of the usage tracker the gate consults.
type QuotaTracker interface {
	CanAccess(ctx context.Context) bool
	RecordUsage(ctx context.Context) domusage.Record
	RemainingCount(ctx context.Context) int
	UpgradePrompt(ctx context.Context) domusage.Prompt
	DailyLimit() int
}

// TrackerFactory returns the tracker of one installation.
type TrackerFactory func(installationID string) QuotaTracker

// Source is the external opportunity data source.
type Source interface {
	Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error)
	Tokens(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (domopp.Stats, error)
}

// Exporter renders rows as a downloadable file.
type Exporter interface {
	Render(rows []domopp.Row) ([]byte, error)
	Filename(now time.Time) string
	ContentType() string
}

// Reporter builds the daily digest.
type Reporter interface {
	Build(ctx context.Context, rows []domopp.Row) report.Summary
}
