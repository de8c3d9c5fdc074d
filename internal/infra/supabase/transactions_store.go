package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apexfin/cardcycle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Card transactions — feed storage via PostgREST
// ============================================================

type transactionRow struct {
	ID             string  `json:"id"`
	CardID         string  `json:"card_id"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Date           string  `json:"date"`
	AuthorizedDate *string `json:"authorized_date"`
	Pending        bool    `json:"pending"`
}

func (r *transactionRow) toDomain() (domain.Transaction, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: bad date %q: %w", r.ID, r.Date, err)
	}
	return domain.Transaction{
		ID:             r.ID,
		CardID:         r.CardID,
		Description:    r.Description,
		Amount:         r.Amount,
		Date:           date,
		AuthorizedDate: parseDatePtr(r.AuthorizedDate),
		Pending:        r.Pending,
	}, nil
}

func transactionToRow(t *domain.Transaction) transactionRow {
	return transactionRow{
		ID:             t.ID,
		CardID:         t.CardID,
		Description:    t.Description,
		Amount:         t.Amount,
		Date:           formatDate(t.Date),
		AuthorizedDate: formatDatePtr(t.AuthorizedDate),
		Pending:        t.Pending,
	}
}

func (c *Client) ListTransactions(ctx context.Context, cardID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	path := fmt.Sprintf("card_transactions?card_id=eq.%s&order=date.asc", cardID)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode card_transactions: %w", err)
		}
	}

	txns := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// ReplaceTransactions swaps a card's whole feed during a resync window.
// Cycles are regenerated right after, so delete+insert here does not need
// to be atomic with anything else.
func (c *Client) ReplaceTransactions(ctx context.Context, cardID string, txns []domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "Supabase.ReplaceTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.Int("transactions", len(txns)),
	)

	if err := c.doDelete(ctx, fmt.Sprintf("card_transactions?card_id=eq.%s", cardID)); err != nil {
		return err
	}
	if len(txns) == 0 {
		return nil
	}

	rows := make([]transactionRow, 0, len(txns))
	for i := range txns {
		rows = append(rows, transactionToRow(&txns[i]))
	}
	_, err := c.doPost(ctx, "card_transactions", rows)
	return err
}
