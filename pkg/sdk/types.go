package liquiditick

import (
	"context"
	"time"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// Tier is an installation's subscription class.
type Tier string

// Tier values. Pro bypasses the daily quota.
const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// OpportunityType is the scanner's classification of a row.
type OpportunityType string

// OpportunityType values.
const (
	TypeExplosive OpportunityType = "explosive"
	TypeMoonshot  OpportunityType = "moonshot"
	TypeMomentum  OpportunityType = "momentum"
	TypeStandard  OpportunityType = "standard"
)

// Opportunity is one scored token.
type Opportunity struct {
	Rank           int
	Score          float64
	Symbol         string
	Name           string
	PriceUSD       float64
	PriceChange1h  float64
	PriceChange24h float64
	Volume24h      float64
	Liquidity      float64
	MarketCap      float64
	DexID          string
	ChainID        string
	Type           OpportunityType
	Signals        []string
}

// Filters narrows a fetch. Nil pointers and empty strings mean "no constraint".
type Filters struct {
	TokenSymbol  string
	MinScore     *float64
	MinVolume    *float64
	MinLiquidity *float64
	Type         OpportunityType
}

// Stats holds platform-wide figures.
type Stats struct {
	WinRate        float64
	AvgReturn      float64
	Subscribers    int
	MonthlyRevenue float64
}

// DataStatus tells whether results came from the live source or the demo set.
type DataStatus string

// DataStatus values.
const (
	StatusOnline  DataStatus = "online"
	StatusOffline DataStatus = "offline"
)

// PromptKind classifies an upgrade prompt.
type PromptKind string

// PromptKind values.
const (
	PromptNone          PromptKind = "none"
	PromptLimitReached  PromptKind = "limit_reached"
	PromptLimitWarning  PromptKind = "limit_warning"
	PromptFeatureLocked PromptKind = "feature_locked"
)

// Prompt is upgrade messaging for the UI.
type Prompt struct {
	ShouldShow   bool
	Kind         PromptKind
	Title        string
	Message      string
	CallToAction string
}

// UsageRecord is an installation's quota state for one day.
type UsageRecord struct {
	Date      string
	Count     int
	LastReset time.Time
}

// UsageDebug is a troubleshooting snapshot of one installation.
type UsageDebug struct {
	Current    UsageRecord
	CanAccess  bool
	Remaining  int
	DailyLimit int
	Today      string
	StorageKey string
	Emails     []string
}

// Result is the outcome of a gated opportunities request.
// A denied result has no rows and is not an error.
type Result struct {
	Opportunities []Opportunity
	Denied        bool
	Prompt        Prompt
	Status        DataStatus
	Remaining     int
	CanAccess     bool
	DailyLimit    int
	Unlimited     bool
}

// Export is a rendered CSV file, or a locked-feature prompt when Denied.
type Export struct {
	Denied      bool
	Prompt      Prompt
	Status      DataStatus
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Report is the daily digest, or a locked-feature prompt when Denied.
type Report struct {
	Denied          bool
	Prompt          Prompt
	Status          DataStatus
	Date            string
	Total           int
	HighScoreCount  int
	ExplosiveCount  int
	AverageScore    float64
	TotalVolume     float64
	Top             []Opportunity
	Narrative       string
	NarrativeSource string
	GeneratedAt     time.Time
}

// Source supplies opportunity data. Return ErrSourceUnavailable when the
// backing system cannot be reached; the gate then serves demo data.
type Source interface {
	Fetch(ctx context.Context, f Filters) ([]Opportunity, error)
	Tokens(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
}

// sourceAdapter exposes a public Source through the internal contract.
type sourceAdapter struct {
	inner Source
}

func (a *sourceAdapter) Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error) {
	rows, err := a.inner.Fetch(ctx, filtersFromDomain(f))
	if err != nil {
		return nil, err //nolint:wrapcheck // caller-supplied source
	}
	out := make([]domopp.Row, len(rows))
	for i, r := range rows {
		out[i] = rowToDomain(r)
	}
	return out, nil
}

func (a *sourceAdapter) Tokens(ctx context.Context) ([]string, error) {
	return a.inner.Tokens(ctx) //nolint:wrapcheck // caller-supplied source
}

func (a *sourceAdapter) Stats(ctx context.Context) (domopp.Stats, error) {
	s, err := a.inner.Stats(ctx)
	if err != nil {
		return domopp.Stats{}, err //nolint:wrapcheck // caller-supplied source
	}
	return domopp.Stats(s), nil
}

// offlineSource stands in when no source is configured.
type offlineSource struct{}

func (offlineSource) Fetch(context.Context, domopp.Filters) ([]domopp.Row, error) {
	return nil, domopp.ErrUnavailable
}

func (offlineSource) Tokens(context.Context) ([]string, error) {
	return nil, domopp.ErrUnavailable
}

func (offlineSource) Stats(context.Context) (domopp.Stats, error) {
	return domopp.Stats{}, domopp.ErrUnavailable
}

// --- converters ---

func filtersToDomain(f Filters) domopp.Filters {
	return domopp.Filters{
		TokenSymbol:  f.TokenSymbol,
		MinScore:     f.MinScore,
		MinVolume:    f.MinVolume,
		MinLiquidity: f.MinLiquidity,
		Type:         domopp.Type(f.Type),
	}
}

func filtersFromDomain(f domopp.Filters) Filters {
	return Filters{
		TokenSymbol:  f.TokenSymbol,
		MinScore:     f.MinScore,
		MinVolume:    f.MinVolume,
		MinLiquidity: f.MinLiquidity,
		Type:         OpportunityType(f.Type),
	}
}

func rowToDomain(o Opportunity) domopp.Row {
	return domopp.Row{
		Rank:           o.Rank,
		Score:          o.Score,
		Symbol:         o.Symbol,
		Name:           o.Name,
		PriceUSD:       o.PriceUSD,
		PriceChange1h:  o.PriceChange1h,
		PriceChange24h: o.PriceChange24h,
		Volume24h:      o.Volume24h,
		Liquidity:      o.Liquidity,
		MarketCap:      o.MarketCap,
		DexID:          o.DexID,
		ChainID:        o.ChainID,
		Type:           domopp.Type(o.Type),
		Signals:        o.Signals,
	}
}

func rowFromDomain(r domopp.Row) Opportunity {
	return Opportunity{
		Rank:           r.Rank,
		Score:          r.Score,
		Symbol:         r.Symbol,
		Name:           r.Name,
		PriceUSD:       r.PriceUSD,
		PriceChange1h:  r.PriceChange1h,
		PriceChange24h: r.PriceChange24h,
		Volume24h:      r.Volume24h,
		Liquidity:      r.Liquidity,
		MarketCap:      r.MarketCap,
		DexID:          r.DexID,
		ChainID:        r.ChainID,
		Type:           OpportunityType(r.Type),
		Signals:        r.Signals,
	}
}

func rowsFromDomain(rows []domopp.Row) []Opportunity {
	out := make([]Opportunity, len(rows))
	for i, r := range rows {
		out[i] = rowFromDomain(r)
	}
	return out
}

func promptFromDomain(p domusage.Prompt) Prompt {
	if p.Kind == "" {
		p.Kind = domusage.KindNone
	}
	return Prompt{
		ShouldShow:   p.ShouldShow,
		Kind:         PromptKind(p.Kind),
		Title:        p.Title,
		Message:      p.Message,
		CallToAction: p.CallToAction,
	}
}

func recordFromDomain(r domusage.Record) UsageRecord {
	return UsageRecord{Date: r.Date, Count: r.Count, LastReset: r.LastReset}
}

func reportFromDomain(s report.Summary) Report {
	return Report{
		Date:            s.Date,
		Total:           s.Total,
		HighScoreCount:  s.HighScoreCount,
		ExplosiveCount:  s.ExplosiveCount,
		AverageScore:    s.AverageScore,
		TotalVolume:     s.TotalVolume,
		Top:             rowsFromDomain(s.Top),
		Narrative:       s.Narrative,
		NarrativeSource: s.NarrativeSource,
		GeneratedAt:     s.GeneratedAt,
	}
}
