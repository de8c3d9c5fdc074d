package cycle

import (
	"testing"

	"github.com/apexfin/cardcycle/internal/domain"
)

func TestReconcileStatement(t *testing.T) {
	p := DefaultParams()

	t.Run("no statement balance", func(t *testing.T) {
		card := &domain.Card{}
		if _, ok := p.ReconcileStatement(card, nil); ok {
			t.Error("expected ok=false without a statement balance")
		}
	})

	t.Run("balance unchanged keeps full statement amount", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(1000),
			BalanceCurrent:       f(-1000),
			LastStatementDate:    datePtr(2024, 6, 15),
		}
		got, ok := p.ReconcileStatement(card, nil)
		if !ok || got != 1000 {
			t.Errorf("remaining = %v ok=%v, want 1000 true", got, ok)
		}
	})

	t.Run("payment after close reduces remaining", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(1000),
			BalanceCurrent:       f(-600),
			LastStatementDate:    datePtr(2024, 6, 15),
		}
		txns := []domain.Transaction{
			{ID: "a", Description: "PAYMENT THANK YOU", Amount: -400, Date: date(2024, 6, 20)},
		}
		got, ok := p.ReconcileStatement(card, txns)
		if !ok || got != 600 {
			t.Errorf("remaining = %v ok=%v, want 600 true", got, ok)
		}
	})

	t.Run("payment on or before close is ignored", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(1000),
			BalanceCurrent:       f(-900),
			LastStatementDate:    datePtr(2024, 6, 15),
		}
		txns := []domain.Transaction{
			{ID: "a", Description: "PAYMENT THANK YOU", Amount: -400, Date: date(2024, 6, 15)},
		}
		got, _ := p.ReconcileStatement(card, txns)
		if got != 1000 {
			t.Errorf("remaining = %v, want 1000 (same-day payment belongs to the closed cycle)", got)
		}
	})

	t.Run("positive rows never count as payments", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(1000),
			BalanceCurrent:       f(-500),
			LastStatementDate:    datePtr(2024, 6, 15),
		}
		txns := []domain.Transaction{
			{ID: "a", Description: "PAYMENT REVERSAL", Amount: 400, Date: date(2024, 6, 20)},
		}
		got, _ := p.ReconcileStatement(card, txns)
		if got != 1000 {
			t.Errorf("remaining = %v, want 1000", got)
		}
	})

	t.Run("overpayment clamps to zero", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(1000),
			BalanceCurrent:       f(-100),
			LastStatementDate:    datePtr(2024, 6, 15),
		}
		txns := []domain.Transaction{
			{ID: "a", Description: "AUTOPAY", Amount: -1200, Date: date(2024, 6, 25)},
		}
		got, _ := p.ReconcileStatement(card, txns)
		if got != 0 {
			t.Errorf("remaining = %v, want 0", got)
		}
	})

	t.Run("signed statement balance normalized", func(t *testing.T) {
		card := &domain.Card{
			LastStatementBalance: f(-750),
			BalanceCurrent:       f(-750),
		}
		got, ok := p.ReconcileStatement(card, nil)
		if !ok || got != 750 {
			t.Errorf("remaining = %v ok=%v, want 750 true", got, ok)
		}
	})
}
