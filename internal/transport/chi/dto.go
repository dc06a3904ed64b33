package chi

import (
	"time"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/domain/report"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
	healthuc "github.com/kailas-cloud/liquiditick/internal/usecase/health"
)

// ErrorResponseCode is the machine-readable error class.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeFeatureLocked    ErrorResponseCode = "feature_locked"
	ErrorResponseCodeQuotaExhausted   ErrorResponseCode = "quota_exhausted"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	Prompt  *PromptResponse   `json:"prompt,omitempty"`
}

// PromptResponse is upgrade messaging for the dashboard.
type PromptResponse struct {
	ShouldShow   bool   `json:"should_show"`
	Type         string `json:"type"`
	Title        string `json:"title,omitempty"`
	Message      string `json:"message,omitempty"`
	CallToAction string `json:"cta,omitempty"`
}

// OpportunityItem is one rendered row.
type OpportunityItem struct {
	Rank           int      `json:"rank"`
	Score          float64  `json:"score"`
	Symbol         string   `json:"base_token_symbol"`
	Name           string   `json:"base_token_name"`
	PriceUSD       float64  `json:"price_usd"`
	PriceChange1h  float64  `json:"price_change_1h"`
	PriceChange24h float64  `json:"price_change_24h"`
	Volume24h      float64  `json:"volume_24h"`
	Liquidity      float64  `json:"liquidity"`
	MarketCap      float64  `json:"market_cap"`
	DexID          string   `json:"dex_id"`
	ChainID        string   `json:"chain_id"`
	Type           string   `json:"opportunity_type"`
	Signals        []string `json:"signals"`
}

// UsageBadge mirrors the dashboard's usage indicator.
type UsageBadge struct {
	Remaining  int  `json:"remaining"`
	CanAccess  bool `json:"can_access"`
	DailyLimit int  `json:"daily_limit"`
	Unlimited  bool `json:"unlimited"`
}

// OpportunitiesResponse is the body of GET /api/opportunities.
type OpportunitiesResponse struct {
	Items  []OpportunityItem `json:"items"`
	Denied bool              `json:"denied"`
	Status string            `json:"status"`
	Usage  UsageBadge        `json:"usage"`
	Prompt PromptResponse    `json:"prompt"`
}

// TokensResponse is the body of GET /api/tokens.
type TokensResponse struct {
	Tokens []string `json:"tokens"`
	Status string   `json:"status"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	WinRate        float64 `json:"win_rate"`
	AvgReturn      float64 `json:"avg_return"`
	Subscribers    int     `json:"subscribers"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	Status         string  `json:"status"`
}

// ReportResponse is the body of GET /api/report/daily.
type ReportResponse struct {
	Date            string            `json:"date"`
	Total           int               `json:"total_opportunities"`
	HighScoreCount  int               `json:"high_score_count"`
	ExplosiveCount  int               `json:"explosive_count"`
	AverageScore    float64           `json:"avg_score"`
	TotalVolume     float64           `json:"total_volume"`
	Top             []OpportunityItem `json:"top_opportunities"`
	Narrative       string            `json:"narrative"`
	NarrativeSource string            `json:"narrative_source"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Status          string            `json:"status"`
}

// UsageResponse is the body of GET /api/usage and the usage admin routes.
type UsageResponse struct {
	UsageBadge
	Count  int            `json:"count"`
	Date   string         `json:"date"`
	Prompt PromptResponse `json:"prompt"`
}

// UsageRecordResponse is the persisted record as shown to operators.
type UsageRecordResponse struct {
	Date      string    `json:"date"`
	Count     int       `json:"count"`
	LastReset time.Time `json:"last_reset"`
}

// DebugResponse is the body of GET /api/usage/debug.
type DebugResponse struct {
	Current         UsageRecordResponse `json:"current"`
	CanAccess       bool                `json:"can_access"`
	Remaining       int                 `json:"remaining"`
	DailyLimit      int                 `json:"daily_limit"`
	Today           string              `json:"today"`
	StorageKey      string              `json:"storage_key"`
	Emails          []string            `json:"emails"`
	EmailPreference string              `json:"email_preference"`
	Tier            string              `json:"tier"`
}

// TierRequest is the body of PUT /api/tier.
type TierRequest struct {
	Tier string `json:"tier"`
}

// TierResponse is the body of GET and PUT /api/tier.
type TierResponse struct {
	Tier string `json:"tier"`
}

// EmailRequest is the body of POST /api/emails.
type EmailRequest struct {
	Email string `json:"email"`
}

// EmailResponse is the body of POST /api/emails.
type EmailResponse struct {
	Saved bool `json:"saved"`
}

// EmailPreferenceResponse is the body of GET /api/emails/preference.
type EmailPreferenceResponse struct {
	Preference string `json:"preference"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func promptToResponse(p domusage.Prompt) PromptResponse {
	return PromptResponse{
		ShouldShow:   p.ShouldShow,
		Type:         string(p.Kind),
		Title:        p.Title,
		Message:      p.Message,
		CallToAction: p.CallToAction,
	}
}

func rowsToItems(rows []domopp.Row) []OpportunityItem {
	items := make([]OpportunityItem, len(rows))
	for i, r := range rows {
		signals := r.Signals
		if signals == nil {
			signals = []string{}
		}
		items[i] = OpportunityItem{
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
			Type:           string(r.Type),
			Signals:        signals,
		}
	}
	return items
}

func summaryToResponse(s report.Summary, status domopp.Status) ReportResponse {
	return ReportResponse{
		Date:            s.Date,
		Total:           s.Total,
		HighScoreCount:  s.HighScoreCount,
		ExplosiveCount:  s.ExplosiveCount,
		AverageScore:    s.AverageScore,
		TotalVolume:     s.TotalVolume,
		Top:             rowsToItems(s.Top),
		Narrative:       s.Narrative,
		NarrativeSource: s.NarrativeSource,
		GeneratedAt:     s.GeneratedAt.UTC(),
		Status:          string(status),
	}
}

func healthToResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
