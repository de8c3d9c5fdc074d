package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apexfin/cardcycle/internal/config"
	"github.com/apexfin/cardcycle/internal/cycle"
	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/apexfin/cardcycle/internal/handler"
	"github.com/apexfin/cardcycle/internal/infra/cache"
	"github.com/apexfin/cardcycle/internal/infra/observability"
	"github.com/apexfin/cardcycle/internal/infra/plaid"
	"github.com/apexfin/cardcycle/internal/infra/resilience"
	"github.com/apexfin/cardcycle/internal/infra/supabase"
	"github.com/apexfin/cardcycle/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("sweep_concurrency", cfg.SweepConcurrency),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cardcycle")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	cycleCache := cache.New[[]domain.BillingCycle](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilienceCfg,
		logger,
	)

	aggregator := plaid.NewClient(
		httpClient,
		cfg.PlaidBaseURL,
		cfg.PlaidClientID,
		cfg.PlaidSecret,
		store,
		resilience.NewCircuitBreaker("plaid"),
		resilienceCfg,
		logger,
	)

	// --- Derivation parameters ---
	params := cycle.DefaultParams()
	if cfg.DefaultCycleDays > 0 {
		params.DefaultCycleDays = cfg.DefaultCycleDays
	}
	if cfg.HistoryMonths > 0 {
		params.HistoryMonths = cfg.HistoryMonths
	}
	if cfg.OpenDateSkewDays > 0 {
		params.OpenDateSkewDays = cfg.OpenDateSkewDays
	}
	if cfg.OpenDateBufferDays > 0 {
		params.OpenDateBufferDays = cfg.OpenDateBufferDays
	}
	if cfg.MinExpectedHistory > 0 {
		params.MinExpectedHistory = cfg.MinExpectedHistory
	}

	// --- Services ---
	cycleSvc := service.NewCycleService(store, cycleCache, params, metrics, logger)
	syncSvc := service.NewSyncService(store, aggregator, cycleSvc, metrics, logger, cfg.SweepConcurrency)

	// --- Router ---
	router := handler.NewRouter(cycleSvc, syncSvc, aggregator, store, metrics, cfg.AdminTokenHash, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
