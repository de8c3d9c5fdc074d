package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apexfin/cardcycle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Items — aggregator connections and their access tokens
// ============================================================

// GetItemAccessToken returns the aggregator access token stored for a
// connection. Implements the plaid.TokenStore interface.
func (c *Client) GetItemAccessToken(ctx context.Context, itemID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetItemAccessToken")
	defer span.End()
	span.SetAttributes(attribute.String("item.id", itemID))

	path := fmt.Sprintf("items?id=eq.%s&select=access_token&limit=1", itemID)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return "", err
	}

	var rows []struct {
		AccessToken string `json:"access_token"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return "", fmt.Errorf("decode items: %w", err)
		}
	}
	if len(rows) == 0 || rows[0].AccessToken == "" {
		return "", &domain.ErrNotFound{Resource: "item", ID: itemID}
	}
	return rows[0].AccessToken, nil
}
