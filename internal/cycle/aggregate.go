package cycle

import (
	"math"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
)

// SpendTotal is the aggregated purchase activity inside one window.
type SpendTotal struct {
	TotalSpend       float64
	TransactionCount int
}

// Spend sums the card's purchase activity inside the window, excluding
// classified payments. Open windows are clipped to asOf since future-dated
// transactions cannot exist yet. An empty window is a valid {0, 0} result,
// not an error.
func (p Params) Spend(w Window, txns []domain.Transaction, asOf time.Time) SpendTotal {
	start := day(w.Start)
	end := day(w.End)
	if today := day(asOf); end.After(today) {
		end = today
	}

	var total SpendTotal
	for _, t := range txns {
		d := day(t.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if p.IsPayment(t.Description) {
			continue
		}
		total.TotalSpend += math.Abs(t.Amount)
		total.TransactionCount++
	}
	return total
}
