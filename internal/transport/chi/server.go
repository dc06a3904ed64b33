// Package chi exposes the gate, usage tracker and tier flag over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/domain"
	domtier "github.com/kailas-cloud/liquiditick/internal/domain/tier"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
	"github.com/kailas-cloud/liquiditick/internal/logger"
	tierrepo "github.com/kailas-cloud/liquiditick/internal/repository/tier"
	gateuc "github.com/kailas-cloud/liquiditick/internal/usecase/gate"
	healthuc "github.com/kailas-cloud/liquiditick/internal/usecase/health"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
)

// Response headers describing the gate decision.
const (
	HeaderQuotaDecision  = "X-Quota-Decision"
	HeaderQuotaRemaining = "X-Quota-Remaining"
	HeaderDataStatus     = "X-Data-Status"
)

const maxBodyBytes = 4 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	gate          *gateuc.Service
	usage         *usageuc.Service
	tiers         *tierrepo.Repo
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	gate *gateuc.Service,
	usage *usageuc.Service,
	tiers *tierrepo.Repo,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		gate:   gate,
		usage:  usage,
		tiers:  tiers,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidTier, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidEmail, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrQuotaExhausted, http.StatusTooManyRequests, ErrorResponseCodeQuotaExhausted),
		sentinelHandler(domain.ErrFeatureLocked, http.StatusPaymentRequired, ErrorResponseCodeFeatureLocked),
	}
	return s
}

// Mount registers every route on r. adminKeys guard the usage admin routes.
func (s *Server) Mount(r chi.Router, adminKeys []string) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(InstallationMiddleware)

		r.Get("/opportunities", s.GetOpportunities)
		r.Get("/tokens", s.GetTokens)
		r.Get("/stats", s.GetStats)
		r.Get("/export/csv", s.ExportCSV)
		r.Get("/report/daily", s.DailyReport)
		r.Get("/usage", s.GetUsage)
		r.Get("/tier", s.GetTier)
		r.Put("/tier", s.PutTier)
		r.Post("/emails", s.SaveEmail)
		r.Get("/emails/preference", s.GetEmailPreference)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(adminKeys))
			r.Get("/usage/debug", s.GetUsageDebug)
			r.Post("/usage/reset", s.ResetUsage)
			r.Delete("/usage", s.ClearUsage)
		})
	})
}

// GetOpportunities handles GET /api/opportunities.
// A spent quota is a normal 200 reply with denied=true and the prompt.
func (s *Server) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	req, ok := s.gateRequest(w, r)
	if !ok {
		return
	}

	ctx, trace := traceContext(r)
	res := s.gate.RequestOpportunities(ctx, req)

	setTraceHeaders(w, trace)
	writeJSON(w, http.StatusOK, OpportunitiesResponse{
		Items:  rowsToItems(res.Rows),
		Denied: res.Denied,
		Status: string(res.Status),
		Usage: UsageBadge{
			Remaining:  res.Remaining,
			CanAccess:  res.CanAccess,
			DailyLimit: res.DailyLimit,
			Unlimited:  res.Unlimited,
		},
		Prompt: promptToResponse(res.Prompt),
	})
}

// GetTokens handles GET /api/tokens.
func (s *Server) GetTokens(w http.ResponseWriter, r *http.Request) {
	res := s.gate.Tokens(r.Context())
	w.Header().Set(HeaderDataStatus, string(res.Status))
	writeJSON(w, http.StatusOK, TokensResponse{Tokens: res.Tokens, Status: string(res.Status)})
}

// GetStats handles GET /api/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	res := s.gate.Stats(r.Context())
	w.Header().Set(HeaderDataStatus, string(res.Status))
	writeJSON(w, http.StatusOK, StatsResponse{
		WinRate:        res.Stats.WinRate,
		AvgReturn:      res.Stats.AvgReturn,
		Subscribers:    res.Stats.Subscribers,
		MonthlyRevenue: res.Stats.MonthlyRevenue,
		Status:         string(res.Status),
	})
}

// ExportCSV handles GET /api/export/csv.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := s.gateRequest(w, r)
	if !ok {
		return
	}

	ctx, trace := traceContext(r)
	res, err := s.gate.ExportCSV(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setTraceHeaders(w, trace)
	if res.Denied {
		writeLocked(w, res.Prompt)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// DailyReport handles GET /api/report/daily.
func (s *Server) DailyReport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.gateRequest(w, r)
	if !ok {
		return
	}

	ctx, trace := traceContext(r)
	res, err := s.gate.DailyReport(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setTraceHeaders(w, trace)
	if res.Denied {
		writeLocked(w, res.Prompt)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(res.Summary, res.Status))
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	tr := s.usage.Tracker(InstallationID(r.Context()))
	writeJSON(w, http.StatusOK, s.usageResponse(r, tr, s.tierOf(r)))
}

// GetUsageDebug handles GET /api/usage/debug.
func (s *Server) GetUsageDebug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tr := s.usage.Tracker(InstallationID(ctx))
	d := tr.DebugInfo(ctx)

	writeJSON(w, http.StatusOK, DebugResponse{
		Current: UsageRecordResponse{
			Date:      d.Current.Date,
			Count:     d.Current.Count,
			LastReset: d.Current.LastReset.UTC(),
		},
		CanAccess:       d.CanAccess,
		Remaining:       d.Remaining,
		DailyLimit:      d.DailyLimit,
		Today:           d.Today,
		StorageKey:      d.StorageKey,
		Emails:          d.Emails,
		EmailPreference: tr.EmailPreference(ctx),
		Tier:            s.tierOf(r).String(),
	})
}

// ResetUsage handles POST /api/usage/reset. The tier flag returns to free.
func (s *Server) ResetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := InstallationID(ctx)
	tr := s.usage.Tracker(id)

	tr.ResetUsage(ctx)
	if err := s.tiers.Set(ctx, id, domtier.Free); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Failed to reset tier flag", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, s.usageResponse(r, tr, domtier.Free))
}

// ClearUsage handles DELETE /api/usage.
func (s *Server) ClearUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.usage.Tracker(InstallationID(ctx)).ClearAllData(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// GetTier handles GET /api/tier.
func (s *Server) GetTier(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TierResponse{Tier: s.tierOf(r).String()})
}

// PutTier handles PUT /api/tier.
func (s *Server) PutTier(w http.ResponseWriter, r *http.Request) {
	var req TierRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := domtier.ParseStrict(req.Tier)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx := r.Context()
	if err := s.tiers.Set(ctx, InstallationID(ctx), t); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TierResponse{Tier: t.String()})
}

// SaveEmail handles POST /api/emails.
func (s *Server) SaveEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	if !s.usage.Tracker(InstallationID(ctx)).SaveEmailForReports(ctx, req.Email) {
		s.handleDomainError(w, domain.ErrInvalidEmail)
		return
	}
	writeJSON(w, http.StatusOK, EmailResponse{Saved: true})
}

// GetEmailPreference handles GET /api/emails/preference.
func (s *Server) GetEmailPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pref := s.usage.Tracker(InstallationID(ctx)).EmailPreference(ctx)
	writeJSON(w, http.StatusOK, EmailPreferenceResponse{Preference: pref})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// gateRequest binds the query and resolves the tier. It writes the error reply itself.
func (s *Server) gateRequest(w http.ResponseWriter, r *http.Request) (gateuc.Request, bool) {
	params, err := bindOpportunitiesParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return gateuc.Request{}, false
	}
	filters, err := params.Filters()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return gateuc.Request{}, false
	}

	return gateuc.Request{
		InstallationID:  InstallationID(r.Context()),
		TriggeredByUser: params.TriggeredByUser(),
		Tier:            s.tierOf(r),
		Filters:         filters,
	}, true
}

// tierOf reads the tier flag. A store failure degrades to Free.
func (s *Server) tierOf(r *http.Request) domtier.Tier {
	ctx := r.Context()
	t, err := s.tiers.Get(ctx, InstallationID(ctx))
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Failed to read tier flag", zap.Error(err))
	}
	return t
}

func (s *Server) usageResponse(r *http.Request, tr *usageuc.Tracker, t domtier.Tier) UsageResponse {
	ctx := r.Context()
	rec := tr.TodayUsage(ctx)
	remaining := rec.Remaining(tr.DailyLimit())

	resp := UsageResponse{
		UsageBadge: UsageBadge{
			Remaining:  remaining,
			CanAccess:  remaining > 0,
			DailyLimit: tr.DailyLimit(),
			Unlimited:  t.IsPro(),
		},
		Count:  rec.Count,
		Date:   rec.Date,
		Prompt: promptToResponse(tr.UpgradePrompt(ctx)),
	}
	if t.IsPro() {
		resp.CanAccess = true
		resp.Prompt = promptToResponse(domusage.NoPrompt)
	}
	return resp
}

// traceContext reuses the trace installed by the logging middleware, or starts one.
func traceContext(r *http.Request) (context.Context, *domain.AccessTrace) {
	if trace := domain.TraceFromContext(r.Context()); trace != nil {
		return r.Context(), trace
	}
	return domain.NewContextWithTrace(r.Context())
}

func setTraceHeaders(w http.ResponseWriter, trace *domain.AccessTrace) {
	if trace == nil || trace.Decision == "" {
		return
	}
	w.Header().Set(HeaderQuotaDecision, trace.Decision)
	if trace.Remaining >= 0 {
		w.Header().Set(HeaderQuotaRemaining, strconv.Itoa(trace.Remaining))
	}
	if trace.Status != "" {
		w.Header().Set(HeaderDataStatus, trace.Status)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeLocked answers a Free request for a Pro feature with 402 and the prompt.
func writeLocked(w http.ResponseWriter, p domusage.Prompt) {
	prompt := promptToResponse(p)
	writeJSON(w, http.StatusPaymentRequired, ErrorResponse{
		Code:    ErrorResponseCodeFeatureLocked,
		Message: p.Message,
		Prompt:  &prompt,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidFilter,
		domain.ErrInvalidTier,
		domain.ErrInvalidEmail,
		domain.ErrQuotaExhausted,
		domain.ErrFeatureLocked,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
