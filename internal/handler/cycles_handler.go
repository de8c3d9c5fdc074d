package handler

import (
	"net/http"

	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/apexfin/cardcycle/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Billing cycles
// ============================================================

func listCyclesHandler(svc *service.CycleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{cardId}/cycles")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		if cardID == "" {
			writeError(w, http.StatusBadRequest, "cardId is required")
			return
		}
		span.SetAttributes(attribute.String("card.id", cardID))

		cycles, err := svc.ListCycles(ctx, cardID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if cycles == nil {
			cycles = []domain.BillingCycle{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"cycles": cycles})
	}
}

func cardSummaryHandler(svc *service.CycleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{cardId}/summary")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		if cardID == "" {
			writeError(w, http.StatusBadRequest, "cardId is required")
			return
		}
		span.SetAttributes(attribute.String("card.id", cardID))

		summary, err := svc.CardSummary(ctx, cardID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func regenerateCyclesHandler(svc *service.CycleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/cycles/regenerate")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		if cardID == "" {
			writeError(w, http.StatusBadRequest, "cardId is required")
			return
		}
		span.SetAttributes(attribute.String("card.id", cardID))

		cycles, err := svc.Regenerate(ctx, cardID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"card_id": cardID,
			"cycles":  cycles,
		})
	}
}

// ============================================================
// Sync & admin
// ============================================================

func refreshCardHandler(syncSvc *service.SyncService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/refresh")
		defer span.End()

		cardID := chi.URLParam(r, "cardId")
		if cardID == "" {
			writeError(w, http.StatusBadRequest, "cardId is required")
			return
		}
		span.SetAttributes(attribute.String("card.id", cardID))

		cycles, err := syncSvc.RefreshCard(ctx, cardID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"card_id": cardID,
			"cycles":  cycles,
		})
	}
}

func adminSweepHandler(syncSvc *service.SyncService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/sweep")
		defer span.End()

		result, err := syncSvc.SweepAll(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
