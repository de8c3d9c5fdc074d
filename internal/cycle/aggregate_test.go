package cycle

import (
	"testing"

	"github.com/apexfin/cardcycle/internal/domain"
)

func TestSpend(t *testing.T) {
	p := DefaultParams()
	asOf := date(2024, 7, 1)
	w := Window{Start: date(2024, 6, 1), End: date(2024, 6, 30)}

	t.Run("payments are excluded from spend", func(t *testing.T) {
		txns := []domain.Transaction{
			{ID: "a", Description: "STARBUCKS #4421", Amount: 50, Date: date(2024, 6, 10)},
			{ID: "b", Description: "PAYMENT THANK YOU", Amount: -50, Date: date(2024, 6, 20)},
		}
		got := p.Spend(w, txns, asOf)
		if got.TotalSpend != 50 {
			t.Errorf("TotalSpend = %v, want 50", got.TotalSpend)
		}
		if got.TransactionCount != 1 {
			t.Errorf("TransactionCount = %d, want 1", got.TransactionCount)
		}
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		txns := []domain.Transaction{
			{ID: "a", Description: "SHOP", Amount: 10, Date: date(2024, 6, 1)},
			{ID: "b", Description: "SHOP", Amount: 20, Date: date(2024, 6, 30)},
			{ID: "c", Description: "SHOP", Amount: 40, Date: date(2024, 5, 31)},
			{ID: "d", Description: "SHOP", Amount: 80, Date: date(2024, 7, 1)},
		}
		got := p.Spend(w, txns, asOf)
		if got.TotalSpend != 30 {
			t.Errorf("TotalSpend = %v, want 30", got.TotalSpend)
		}
		if got.TransactionCount != 2 {
			t.Errorf("TransactionCount = %d, want 2", got.TransactionCount)
		}
	})

	t.Run("open window clipped to asOf", func(t *testing.T) {
		open := Window{Start: date(2024, 6, 16), End: date(2024, 7, 15), Open: true}
		txns := []domain.Transaction{
			{ID: "a", Description: "SHOP", Amount: 25, Date: date(2024, 6, 20)},
			{ID: "b", Description: "SHOP", Amount: 99, Date: date(2024, 7, 10)},
		}
		got := p.Spend(open, txns, asOf)
		if got.TotalSpend != 25 {
			t.Errorf("TotalSpend = %v, want 25 (post-asOf rows excluded)", got.TotalSpend)
		}
	})

	t.Run("refund amounts count absolute", func(t *testing.T) {
		txns := []domain.Transaction{
			{ID: "a", Description: "AMZN REFUND", Amount: -15, Date: date(2024, 6, 5)},
		}
		got := p.Spend(w, txns, asOf)
		if got.TotalSpend != 15 {
			t.Errorf("TotalSpend = %v, want 15", got.TotalSpend)
		}
	})

	t.Run("empty window yields zero not error", func(t *testing.T) {
		got := p.Spend(w, nil, asOf)
		if got.TotalSpend != 0 || got.TransactionCount != 0 {
			t.Errorf("Spend on empty feed = %+v, want zeros", got)
		}
	})
}
