package domain

import "time"

// ============================================================
// Billing Cycles
// ============================================================

// BillingCycle is a derived, disposable record: never the source of truth,
// always recomputable from Card + Transaction state. A card's cycle set is
// deleted in bulk and regenerated whenever a regeneration is triggered;
// there is no incremental patching.
//
// Invariants for a card's cycle set:
//   - windows are pairwise non-overlapping and contiguous (each start is one
//     day after the next-older window's end),
//   - exactly one cycle has a nil StatementBalance (the open cycle),
//   - no window extends before the card's corrected open date.
type BillingCycle struct {
	ID     string `json:"id"`
	CardID string `json:"card_id"`

	// StartDate and EndDate are inclusive calendar days.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	DueDate *time.Time `json:"due_date,omitempty"`

	// StatementBalance is nil for the currently open cycle only. For the most
	// recent closed cycle it is the reconciled remaining balance; for
	// historical cycles it is the cycle's own total spend.
	StatementBalance *float64 `json:"statement_balance,omitempty"`
	MinimumPayment   *float64 `json:"minimum_payment,omitempty"`

	TotalSpend       float64 `json:"total_spend"`
	TransactionCount int     `json:"transaction_count"`
}

// Open reports whether this is the currently open cycle.
func (b *BillingCycle) Open() bool {
	return b.StatementBalance == nil
}
