package cycle

import (
	"fmt"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"

	"github.com/google/uuid"
)

// Derivation is the result of deriving a card's full cycle set.
type Derivation struct {
	Cycles []domain.BillingCycle

	// Degraded is set when the issuer data could not anchor a real cycle
	// series and the single-current-cycle fallback was used.
	Degraded bool

	// SparseHistory is set when the derivation produced fewer closed cycles
	// than expected even though the transaction feed reaches further back.
	// This usually means the (corrected) open date is still wrong; it is
	// surfaced for logging, never absorbed.
	SparseHistory bool
}

// Derive runs the whole pipeline over a card and its transaction feed:
// window generation, per-window spend aggregation, and statement
// reconciliation for the most recently closed window.
//
// The output is fully deterministic for a given (card, txns, asOf) input —
// cycle IDs included — so regenerating twice over unchanged state yields
// identical results.
func (p Params) Derive(card *domain.Card, txns []domain.Transaction, asOf time.Time) Derivation {
	windows := p.Windows(card, asOf)
	if err := validateWindows(windows); err != nil {
		// Inputs that cannot support a valid series degrade to the single
		// current window rather than ship overlapping or gapped history.
		windows = []Window{p.fallbackWindow(openedDay(card), day(asOf))}
	}

	var d Derivation
	d.Degraded = len(windows) == 1 && windows[0].Open

	closedSeen := 0
	for _, w := range windows {
		spend := p.Spend(w, txns, asOf)

		bc := domain.BillingCycle{
			ID:               cycleID(card.ID, w.Start),
			CardID:           card.ID,
			StartDate:        w.Start,
			EndDate:          w.End,
			TotalSpend:       spend.TotalSpend,
			TransactionCount: spend.TransactionCount,
		}

		switch {
		case w.Open:
			// The unique open cycle: nil statement balance by definition.

		case closedSeen == 0:
			// Most recently closed cycle: reconciled remaining balance and
			// the card's reported due date / minimum payment.
			remaining := spend.TotalSpend
			if r, ok := p.ReconcileStatement(card, txns); ok {
				remaining = r
			}
			bc.StatementBalance = &remaining
			bc.DueDate = card.NextDueDate
			bc.MinimumPayment = card.MinimumPayment
			if remaining == 0 {
				// A fully paid statement has no minimum due.
				zero := 0.0
				bc.MinimumPayment = &zero
			}
			closedSeen++

		default:
			// Historical closed cycle: its own spend stands in for the
			// statement balance the issuer never reported.
			total := spend.TotalSpend
			bc.StatementBalance = &total
			closedSeen++
		}

		d.Cycles = append(d.Cycles, bc)
	}

	d.SparseHistory = p.sparseHistory(closedSeen, txns, asOf)
	return d
}

// sparseHistory reports whether the feed reaches back far enough that more
// closed cycles should have been produced.
func (p Params) sparseHistory(closed int, txns []domain.Transaction, asOf time.Time) bool {
	if closed >= p.MinExpectedHistory {
		return false
	}
	earliest := domain.EarliestTransaction(txns)
	if earliest == nil {
		return false
	}
	feedDays := daysBetween(earliest.Date, asOf)
	return feedDays > p.MinExpectedHistory*p.DefaultCycleDays
}

// cycleID derives a stable UUID from the card and window start so repeated
// regeneration over unchanged inputs is byte-for-byte idempotent.
func cycleID(cardID string, start time.Time) string {
	name := fmt.Sprintf("%s:%s", cardID, start.Format("2006-01-02"))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func openedDay(card *domain.Card) *time.Time {
	if card.OpenedAt == nil {
		return nil
	}
	d := day(*card.OpenedAt)
	return &d
}
