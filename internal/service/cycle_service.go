package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/apexfin/cardcycle/internal/cycle"
	"github.com/apexfin/cardcycle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Billing-cycle regeneration
// ============================================================

// Regenerate rebuilds the card's whole cycle set from current Card and
// Transaction state, as of now.
func (s *CycleService) Regenerate(ctx context.Context, cardID string) ([]domain.BillingCycle, error) {
	return s.RegenerateAt(ctx, cardID, s.now())
}

// RegenerateAt is the explicit-clock entry point behind Regenerate. The
// whole delete-recompute-insert sequence holds the card's lock: a second
// caller blocks until the first swap lands, so racing triggers (webhook,
// scheduled sync, admin fix) cannot interleave and corrupt the cycle set.
func (s *CycleService) RegenerateAt(ctx context.Context, cardID string, asOf time.Time) ([]domain.BillingCycle, error) {
	ctx, span := tracer.Start(ctx, "CycleService.Regenerate")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("regenerate", time.Since(start)) }()

	unlock := s.locks.Lock(cardID)
	defer unlock()

	// Last safe point to stop: once the swap is issued it must run to
	// completion or fail whole.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		s.metrics.IncrRegeneration("error")
		return nil, err
	}

	txns, err := s.store.ListTransactions(ctx, cardID)
	if err != nil {
		s.metrics.IncrRegeneration("error")
		return nil, err
	}

	// Correct an implausible open date before it can corrupt the historical
	// trim, and persist the fix so later reads agree with this derivation.
	if corrected := s.params.CorrectOpenDate(card, domain.EarliestTransaction(txns), asOf); corrected != nil {
		if err := s.store.UpdateCardOpenDate(ctx, cardID, *corrected); err != nil {
			s.metrics.IncrRegeneration("error")
			return nil, fmt.Errorf("persist open-date correction: %w", err)
		}
		s.logger.Info("corrected implausible open date",
			zap.String("card_id", cardID),
			zap.Timep("reported", card.OpenedAt),
			zap.Time("corrected", *corrected),
		)
		s.metrics.IncrOpenDateFix()
		card.OpenedAt = corrected
	}

	d := s.params.Derive(card, txns, asOf)

	if d.Degraded {
		s.logger.Warn("no usable statement anchor, emitted single current cycle",
			zap.String("card_id", cardID),
		)
	}
	if d.SparseHistory {
		// The feed reaches back further than the windows do. Usually a
		// still-wrong open date; surfaced instead of absorbed.
		s.logger.Warn("suspiciously few historical cycles for feed depth",
			zap.String("card_id", cardID),
			zap.Int("cycles", len(d.Cycles)),
			zap.Int("transactions", len(txns)),
		)
		s.metrics.IncrSparseHistoryFlag()
	}

	if err := s.store.ReplaceBillingCycles(ctx, cardID, d.Cycles); err != nil {
		s.metrics.IncrRegeneration("error")
		return nil, err
	}

	s.cache.Delete(cyclesCacheKey(cardID))
	s.metrics.IncrRegeneration("success")
	s.metrics.AddCyclesCreated(len(d.Cycles))

	s.logger.Info("billing cycles regenerated",
		zap.String("card_id", cardID),
		zap.Int("cycles", len(d.Cycles)),
		zap.Time("as_of", asOf),
	)

	return d.Cycles, nil
}

// ============================================================
// Reads
// ============================================================

// ListCycles returns the card's persisted cycles ordered by end date
// descending, served from cache when fresh.
func (s *CycleService) ListCycles(ctx context.Context, cardID string) ([]domain.BillingCycle, error) {
	ctx, span := tracer.Start(ctx, "CycleService.ListCycles")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	key := cyclesCacheKey(cardID)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("cycles")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("cycles")

	cycles, err := s.store.ListBillingCycles(ctx, cardID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, cycles)
	return cycles, nil
}

// CardSummary returns the card's balances with a usable limit and
// utilization where one can be established.
func (s *CycleService) CardSummary(ctx context.Context, cardID string) (*domain.CardSummary, error) {
	ctx, span := tracer.Start(ctx, "CycleService.CardSummary")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	cycles, err := s.ListCycles(ctx, cardID)
	if err != nil {
		return nil, err
	}

	limit, inferred := cycle.InferLimit(card)
	summary := &domain.CardSummary{
		CardID:         card.ID,
		Name:           card.Name,
		Mask:           card.Mask,
		BalanceCurrent: card.BalanceCurrent,
		CreditLimit:    limit,
		LimitInferred:  inferred,
		CycleCount:     len(cycles),
	}

	// Utilization only when a limit exists; never divide by nil or zero.
	if limit != nil && card.BalanceCurrent != nil {
		u := math.Abs(*card.BalanceCurrent) / *limit * 100
		summary.Utilization = &u
	}

	return summary, nil
}

func cyclesCacheKey(cardID string) string {
	return fmt.Sprintf("cycles:%s", cardID)
}
