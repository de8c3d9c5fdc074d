package cycle

import (
	"math"

	"github.com/apexfin/cardcycle/internal/domain"
)

// InferLimit returns a usable credit limit for the card, and whether the
// value was inferred rather than issuer-reported.
//
// A reported limit is accepted only when it is a finite positive number.
// Otherwise, when both the current balance and the available credit are
// present, limit = |balance| + available. With neither, the limit (and so
// utilization) is unknown and nil is returned — callers must never divide
// by a nil or zero limit.
func InferLimit(card *domain.Card) (limit *float64, inferred bool) {
	if card.CreditLimit != nil && usable(*card.CreditLimit) {
		return card.CreditLimit, false
	}

	if card.BalanceCurrent != nil && card.AvailableCredit != nil {
		v := math.Abs(*card.BalanceCurrent) + *card.AvailableCredit
		if usable(v) {
			return &v, true
		}
	}
	return nil, false
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
