package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apexfin/cardcycle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Billing cycles — derived rows via PostgREST
// ============================================================

type cycleRow struct {
	ID               string   `json:"id"`
	CardID           string   `json:"card_id"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	DueDate          *string  `json:"due_date"`
	StatementBalance *float64 `json:"statement_balance"`
	MinimumPayment   *float64 `json:"minimum_payment"`
	TotalSpend       float64  `json:"total_spend"`
	TransactionCount int      `json:"transaction_count"`
}

func (r *cycleRow) toDomain() (domain.BillingCycle, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return domain.BillingCycle{}, fmt.Errorf("cycle %s: bad start_date %q: %w", r.ID, r.StartDate, err)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return domain.BillingCycle{}, fmt.Errorf("cycle %s: bad end_date %q: %w", r.ID, r.EndDate, err)
	}
	return domain.BillingCycle{
		ID:               r.ID,
		CardID:           r.CardID,
		StartDate:        start,
		EndDate:          end,
		DueDate:          parseDatePtr(r.DueDate),
		StatementBalance: r.StatementBalance,
		MinimumPayment:   r.MinimumPayment,
		TotalSpend:       r.TotalSpend,
		TransactionCount: r.TransactionCount,
	}, nil
}

func cycleToRow(bc *domain.BillingCycle) cycleRow {
	return cycleRow{
		ID:               bc.ID,
		CardID:           bc.CardID,
		StartDate:        formatDate(bc.StartDate),
		EndDate:          formatDate(bc.EndDate),
		DueDate:          formatDatePtr(bc.DueDate),
		StatementBalance: bc.StatementBalance,
		MinimumPayment:   bc.MinimumPayment,
		TotalSpend:       bc.TotalSpend,
		TransactionCount: bc.TransactionCount,
	}
}

// ListBillingCycles returns the card's persisted cycles, newest first.
func (c *Client) ListBillingCycles(ctx context.Context, cardID string) ([]domain.BillingCycle, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBillingCycles")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	path := fmt.Sprintf("billing_cycles?card_id=eq.%s&order=end_date.desc", cardID)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []cycleRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode billing_cycles: %w", err)
		}
	}

	cycles := make([]domain.BillingCycle, 0, len(rows))
	for i := range rows {
		bc, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, bc)
	}
	return cycles, nil
}

// ReplaceBillingCycles swaps the card's cycle set through the
// replace_billing_cycles stored procedure, so the delete and the inserts
// commit (or roll back) as one transaction. A failed call leaves the
// previous cycle set intact for the caller to retry against.
func (c *Client) ReplaceBillingCycles(ctx context.Context, cardID string, cycles []domain.BillingCycle) error {
	ctx, span := tracer.Start(ctx, "Supabase.ReplaceBillingCycles")
	defer span.End()
	span.SetAttributes(
		attribute.String("card.id", cardID),
		attribute.Int("cycles", len(cycles)),
	)

	rows := make([]cycleRow, 0, len(cycles))
	for i := range cycles {
		rows = append(rows, cycleToRow(&cycles[i]))
	}

	return c.doRPC(ctx, "replace_billing_cycles", map[string]any{
		"p_card_id": cardID,
		"p_cycles":  rows,
	})
}
