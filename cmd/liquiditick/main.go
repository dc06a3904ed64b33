package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/config"
	"github.com/kailas-cloud/liquiditick/internal/db/driver"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	logpkg "github.com/kailas-cloud/liquiditick/internal/logger"
	"github.com/kailas-cloud/liquiditick/internal/metrics"
	"github.com/kailas-cloud/liquiditick/internal/repository/oppcache"
	opprepo "github.com/kailas-cloud/liquiditick/internal/repository/opportunity"
	tierrepo "github.com/kailas-cloud/liquiditick/internal/repository/tier"
	usagerepo "github.com/kailas-cloud/liquiditick/internal/repository/usage"
	chiTransport "github.com/kailas-cloud/liquiditick/internal/transport/chi"
	openaiNarrator "github.com/kailas-cloud/liquiditick/internal/transport/openai"
	"github.com/kailas-cloud/liquiditick/internal/usecase/export"
	gateuc "github.com/kailas-cloud/liquiditick/internal/usecase/gate"
	healthuc "github.com/kailas-cloud/liquiditick/internal/usecase/health"
	reportuc "github.com/kailas-cloud/liquiditick/internal/usecase/report"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
	"github.com/kailas-cloud/liquiditick/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting liquiditick API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("build_date", version.BuildDate),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Int("daily_limit", cfg.Quota.DailyLimit),
	)

	store, err := driver.Open(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create storage", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Storage not ready", zap.Error(err))
	}
	logger.Info("Connected to storage")

	// HTTP metrics register themselves; the rest are registered here.
	metrics.RegisterGateMetrics()

	loc, err := cfg.Quota.Location()
	if err != nil {
		logger.Fatal("Invalid quota timezone", zap.Error(err))
	}

	// Opportunity source chain: gorm -> cache -> instrumented
	oppRepo, err := opprepo.Open(cfg.Source.DSN, cfg.Source.AutoMigrate, logger)
	if err != nil {
		logger.Fatal("Failed to open opportunity database", zap.Error(err))
	}
	defer func() { _ = oppRepo.Close() }()

	var source gateuc.Source = oppRepo
	if cfg.Source.CacheTTLSec > 0 && oppRepo.Online() {
		source = oppcache.New(oppRepo, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Source.CacheTTLSec)*time.Second, metrics.OpportunityCacheTotal, logger)
	}
	source = gateuc.NewInstrumentedSource(source, logger)

	// Report narrator is optional; without a key the template narrative is used.
	var narrator reportuc.Narrator
	var narratorCheck healthuc.NarratorChecker
	if cfg.Report.APIKey != "" {
		n := openaiNarrator.NewNarrator(&openaiNarrator.Config{
			APIKey:    cfg.Report.APIKey,
			BaseURL:   cfg.Report.BaseURL,
			Model:     cfg.Report.Model,
			MaxTokens: cfg.Report.MaxTokens,
			Logger:    logger,
		})
		narrator, narratorCheck = n, n
		logger.Info("Report narrator enabled", zap.String("model", cfg.Report.Model))
	}
	reportSvc := reportuc.New(narrator, logger,
		reportuc.WithLocation(loc),
		reportuc.WithTimeout(time.Duration(cfg.Report.TimeoutSec)*time.Second),
	)

	usageSvc := usageuc.NewService(usagerepo.New(store), usageuc.Config{
		KeyPrefix:  cfg.Storage.KeyPrefix,
		DailyLimit: cfg.Quota.DailyLimit,
		Location:   loc,
	}, logger)
	tiers := tierrepo.New(store, cfg.Storage.KeyPrefix)

	gate := gateuc.New(
		func(id string) gateuc.QuotaTracker { return usageSvc.Tracker(id) },
		source,
		export.NewCSVExporter(""),
		reportSvc,
	)

	// Pass nil interface (not typed nil pointer) when the source is offline.
	var sourcePinger healthuc.Pinger
	if oppRepo.Online() {
		sourcePinger = oppRepo
	}
	healthSvc := healthuc.New(store, sourcePinger, narratorCheck)

	server := chiTransport.NewServer(gate, usageSvc, tiers, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r, cfg.Auth.AdminKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request, including the
// gate decision, and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx, trace := domain.NewContextWithTrace(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("installation_id", ww.Header().Get(chiTransport.InstallationHeader)),
			}
			if trace.Decision != "" {
				fields = append(fields,
					zap.String("quota_decision", trace.Decision),
					zap.Bool("quota_charged", trace.Charged),
					zap.String("data_status", trace.Status),
				)
				if trace.Remaining >= 0 {
					fields = append(fields, zap.Int("quota_remaining", trace.Remaining))
				}
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
