package cycle

import (
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
)

// CorrectOpenDate checks the card's reported open date against the earliest
// known transaction and returns a replacement date when the reported one is
// implausible, or nil when no correction is needed.
//
// Aggregator-reported open dates are frequently wrong: future-dated, off by
// a year, or absent entirely. A wrong open date corrupts the historical trim
// of the window generator, so it is corrected here before windows are built.
func (p Params) CorrectOpenDate(card *domain.Card, earliest *domain.Transaction, asOf time.Time) *time.Time {
	asOf = day(asOf)

	if earliest != nil {
		first := day(earliest.Date)

		replace := false
		switch {
		case card.OpenedAt == nil:
			replace = true
		case day(*card.OpenedAt).After(asOf):
			// Future-dated open date; plainly wrong.
			replace = true
		case daysBetween(*card.OpenedAt, first) > p.OpenDateSkewDays:
			// Reported open date predates the first visible transaction by
			// too much to be trusted.
			replace = true
		}
		if !replace {
			return nil
		}

		// Assume the card was opened shortly before its first visible
		// transaction.
		corrected := first.AddDate(0, 0, -p.OpenDateBufferDays)
		return &corrected
	}

	// No transactions at all. Keep a plausible reported date, otherwise fall
	// back to statement-anchored, then fully synthetic, estimates.
	if card.OpenedAt != nil && !day(*card.OpenedAt).After(asOf) {
		return nil
	}
	if card.LastStatementDate != nil {
		corrected := day(*card.LastStatementDate).AddDate(0, -p.OpenDateStatementFallbackMonths, 0)
		return &corrected
	}
	corrected := asOf.AddDate(0, -p.OpenDateDefaultFallbackMonths, 0)
	return &corrected
}
