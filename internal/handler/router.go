package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/apexfin/cardcycle/internal/infra/observability"
	"github.com/apexfin/cardcycle/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// ReadinessChecker reports whether the persistence backend answers.
type ReadinessChecker interface {
	ListCardIDs(ctx context.Context) ([]string, error)
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	cycleSvc *service.CycleService,
	syncSvc *service.SyncService,
	verifier WebhookVerifier,
	store ReadinessChecker,
	metrics *observability.Metrics,
	adminTokenHash string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(store))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Billing cycles
		// =============================================
		r.Get("/cards/{cardId}/cycles", listCyclesHandler(cycleSvc, logger))
		r.Get("/cards/{cardId}/summary", cardSummaryHandler(cycleSvc, logger))

		// =============================================
		// Aggregator webhooks
		// =============================================
		r.Post("/webhooks/plaid", plaidWebhookHandler(verifier, syncSvc, logger))

		// =============================================
		// Metrics snapshot
		// =============================================
		r.Get("/metrics/derivation", derivationMetricsHandler(metrics))

		// =============================================
		// Admin (bearer token)
		// =============================================
		// Regeneration and refresh mutate persisted state and reach out to
		// the aggregator, so they sit behind the same token as the sweep.
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminTokenHash, logger))
			r.Post("/cards/{cardId}/cycles/regenerate", regenerateCyclesHandler(cycleSvc, logger))
			r.Post("/cards/{cardId}/refresh", refreshCardHandler(syncSvc, logger))
			r.Post("/admin/sweep", adminSweepHandler(syncSvc, logger))
		})
	})

	return r
}

// ============================================================
// Health & metrics
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler(store ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if _, err := store.ListCardIDs(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

func derivationMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetDerivationSnapshot())
	}
}
