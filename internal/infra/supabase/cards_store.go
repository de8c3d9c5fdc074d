package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Cards — CRUD via PostgREST
// ============================================================

// cardRow maps the cards table to our domain. Date columns travel as
// YYYY-MM-DD strings on the wire.
type cardRow struct {
	ID                   string   `json:"id"`
	ItemID               string   `json:"item_id"`
	AccountID            string   `json:"account_id"`
	Name                 string   `json:"name"`
	Mask                 string   `json:"mask"`
	BalanceCurrent       *float64 `json:"balance_current"`
	AvailableCredit      *float64 `json:"available_credit"`
	CreditLimit          *float64 `json:"credit_limit"`
	LastStatementBalance *float64 `json:"last_statement_balance"`
	LastStatementDate    *string  `json:"last_statement_date"`
	NextDueDate          *string  `json:"next_due_date"`
	MinimumPayment       *float64 `json:"minimum_payment"`
	OpenedAt             *string  `json:"opened_at"`
	CreatedAt            *string  `json:"created_at,omitempty"`
	UpdatedAt            *string  `json:"updated_at,omitempty"`
}

func (r *cardRow) toDomain() *domain.Card {
	card := &domain.Card{
		ID:                   r.ID,
		ItemID:               r.ItemID,
		AccountID:            r.AccountID,
		Name:                 r.Name,
		Mask:                 r.Mask,
		BalanceCurrent:       r.BalanceCurrent,
		AvailableCredit:      r.AvailableCredit,
		CreditLimit:          r.CreditLimit,
		LastStatementBalance: r.LastStatementBalance,
		LastStatementDate:    parseDatePtr(r.LastStatementDate),
		NextDueDate:          parseDatePtr(r.NextDueDate),
		MinimumPayment:       r.MinimumPayment,
		OpenedAt:             parseDatePtr(r.OpenedAt),
	}
	if t := parseDatePtr(r.CreatedAt); t != nil {
		card.CreatedAt = *t
	}
	if t := parseDatePtr(r.UpdatedAt); t != nil {
		card.UpdatedAt = *t
	}
	return card
}

func cardToRow(card *domain.Card) *cardRow {
	now := time.Now().UTC().Format(time.RFC3339)
	return &cardRow{
		ID:                   card.ID,
		ItemID:               card.ItemID,
		AccountID:            card.AccountID,
		Name:                 card.Name,
		Mask:                 card.Mask,
		BalanceCurrent:       card.BalanceCurrent,
		AvailableCredit:      card.AvailableCredit,
		CreditLimit:          card.CreditLimit,
		LastStatementBalance: card.LastStatementBalance,
		LastStatementDate:    formatDatePtr(card.LastStatementDate),
		NextDueDate:          formatDatePtr(card.NextDueDate),
		MinimumPayment:       card.MinimumPayment,
		OpenedAt:             formatDatePtr(card.OpenedAt),
		UpdatedAt:            &now,
	}
}

func (c *Client) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	path := fmt.Sprintf("cards?id=eq.%s&limit=1", cardID)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []cardRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode cards: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	return rows[0].toDomain(), nil
}

func (c *Client) ListCardIDs(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCardIDs")
	defer span.End()

	return c.listIDs(ctx, "cards?select=id&order=created_at.asc")
}

func (c *Client) ListCardIDsByItem(ctx context.Context, itemID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCardIDsByItem")
	defer span.End()
	span.SetAttributes(attribute.String("item.id", itemID))

	return c.listIDs(ctx, fmt.Sprintf("cards?select=id&item_id=eq.%s&order=created_at.asc", itemID))
}

func (c *Client) listIDs(ctx context.Context, path string) ([]string, error) {
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode card ids: %w", err)
		}
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// UpsertCard inserts the card or overwrites its sync-owned columns.
func (c *Client) UpsertCard(ctx context.Context, card *domain.Card) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", card.ID))

	// PostgREST upsert: merge on primary-key conflict.
	_, err := c.doUpsert(ctx, "cards?on_conflict=id", cardToRow(card))
	return err
}

func (c *Client) UpdateCardOpenDate(ctx context.Context, cardID string, openedAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCardOpenDate")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	patch := map[string]any{
		"opened_at":  formatDate(openedAt),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	return c.doPatch(ctx, fmt.Sprintf("cards?id=eq.%s", cardID), patch)
}
