package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/apexfin/cardcycle/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Webhook bodies are capped well below any payload the aggregator sends.
const maxWebhookBody = 1 << 20

// WebhookVerifier authenticates a raw webhook body against the detached JWT
// the aggregator puts in the Plaid-Verification header.
type WebhookVerifier interface {
	VerifyWebhook(ctx context.Context, token string, body []byte) error
}

type plaidWebhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// plaidWebhookHandler verifies and dispatches aggregator webhooks. Any
// TRANSACTIONS event triggers a refresh of every card under the item; other
// types are acknowledged and ignored.
func plaidWebhookHandler(verifier WebhookVerifier, syncSvc *service.SyncService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/webhooks/plaid")
		defer span.End()

		// Verification needs the exact raw bytes, so read before decoding.
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read request body")
			return
		}

		token := r.Header.Get("Plaid-Verification")
		if token == "" {
			logger.Warn("webhook: missing verification header",
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeError(w, http.StatusUnauthorized, "missing verification header")
			return
		}

		if err := verifier.VerifyWebhook(ctx, token, body); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var payload plaidWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid webhook body")
			return
		}
		span.SetAttributes(
			attribute.String("webhook.type", payload.WebhookType),
			attribute.String("item.id", payload.ItemID),
		)

		if payload.WebhookType != "TRANSACTIONS" || payload.ItemID == "" {
			logger.Debug("webhook: ignoring event",
				zap.String("type", payload.WebhookType),
				zap.String("code", payload.WebhookCode),
			)
			writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
			return
		}

		if err := syncSvc.RefreshItem(ctx, payload.ItemID); err != nil {
			logger.Error("webhook: item refresh failed",
				zap.String("item_id", payload.ItemID),
				zap.Error(err),
			)
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	}
}
