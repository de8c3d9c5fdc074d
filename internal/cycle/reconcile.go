package cycle

import (
	"math"

	"github.com/apexfin/cardcycle/internal/domain"
)

// ReconcileStatement computes how much of the card's last statement balance
// is still owed.
//
// The aggregator's current balance is a snapshot that already reflects
// payments made since the statement closed, while the statement balance is a
// frozen historical figure; the two have to be reconciled explicitly rather
// than trusted as consistent. Returns (remaining, true) when the card has a
// statement balance to reconcile, (0, false) otherwise.
func (p Params) ReconcileStatement(card *domain.Card, txns []domain.Transaction) (float64, bool) {
	if card.LastStatementBalance == nil {
		return 0, false
	}
	original := math.Abs(*card.LastStatementBalance)

	// Without a current balance, or with the balance still at or above the
	// statement figure, no payment has visibly landed yet.
	if card.BalanceCurrent == nil || math.Abs(*card.BalanceCurrent) >= original {
		return original, true
	}

	// The balance dropped: find the payments that did it. Only classified
	// payments with a negative amount, dated strictly after the close.
	var totalPayments float64
	if card.LastStatementDate != nil {
		closed := day(*card.LastStatementDate)
		for _, t := range txns {
			if !day(t.Date).After(closed) {
				continue
			}
			if t.Amount >= 0 || !p.IsPayment(t.Description) {
				continue
			}
			totalPayments += math.Abs(t.Amount)
		}
	}

	return math.Max(0, original-totalPayments), true
}
