package cycle

import (
	"math"
	"testing"

	"github.com/apexfin/cardcycle/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestInferLimit(t *testing.T) {
	t.Run("reported positive limit wins", func(t *testing.T) {
		card := &domain.Card{CreditLimit: f(5000), BalanceCurrent: f(-800), AvailableCredit: f(200)}
		limit, inferred := InferLimit(card)
		if limit == nil || *limit != 5000 {
			t.Fatalf("limit = %v, want 5000", limit)
		}
		if inferred {
			t.Error("reported limit must not be flagged as inferred")
		}
	})

	t.Run("balance plus available when limit missing", func(t *testing.T) {
		card := &domain.Card{BalanceCurrent: f(-800), AvailableCredit: f(200)}
		limit, inferred := InferLimit(card)
		if limit == nil || *limit != 1000 {
			t.Fatalf("limit = %v, want 1000", limit)
		}
		if !inferred {
			t.Error("fallback limit must be flagged as inferred")
		}
	})

	t.Run("negative reported limit treated as missing", func(t *testing.T) {
		card := &domain.Card{CreditLimit: f(-5), BalanceCurrent: f(-800), AvailableCredit: f(200)}
		limit, inferred := InferLimit(card)
		if limit == nil || *limit != 1000 {
			t.Fatalf("limit = %v, want inferred 1000", limit)
		}
		if !inferred {
			t.Error("expected inferred fallback")
		}
	})

	t.Run("zero reported limit treated as missing", func(t *testing.T) {
		card := &domain.Card{CreditLimit: f(0)}
		limit, _ := InferLimit(card)
		if limit != nil {
			t.Errorf("limit = %v, want nil", *limit)
		}
	})

	t.Run("NaN reported limit treated as missing", func(t *testing.T) {
		card := &domain.Card{CreditLimit: f(math.NaN())}
		limit, _ := InferLimit(card)
		if limit != nil {
			t.Errorf("limit = %v, want nil", *limit)
		}
	})

	t.Run("no usable signal returns nil", func(t *testing.T) {
		card := &domain.Card{BalanceCurrent: f(-800)}
		limit, inferred := InferLimit(card)
		if limit != nil {
			t.Errorf("limit = %v, want nil", *limit)
		}
		if inferred {
			t.Error("nil limit must not be flagged as inferred")
		}
	})
}
