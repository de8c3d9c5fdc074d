package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/apexfin/cardcycle/internal/infra/observability"
	"github.com/apexfin/cardcycle/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Aggregator sync
// ============================================================

// SyncService pulls fresh card state and transactions from the aggregator,
// persists them, and triggers regeneration. It is the only component that
// talks to the aggregator.
type SyncService struct {
	store      port.Store
	aggregator port.AggregatorSource
	cycles     *CycleService
	metrics    *observability.Metrics
	logger     *zap.Logger
	sweepLimit int
}

// NewSyncService creates the sync service. sweepLimit caps how many cards a
// sweep refreshes concurrently.
func NewSyncService(
	store port.Store,
	aggregator port.AggregatorSource,
	cycles *CycleService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	sweepLimit int,
) *SyncService {
	if sweepLimit <= 0 {
		sweepLimit = 1
	}
	return &SyncService{
		store:      store,
		aggregator: aggregator,
		cycles:     cycles,
		metrics:    metrics,
		logger:     logger,
		sweepLimit: sweepLimit,
	}
}

// RefreshCard fetches the card's snapshot and full transaction feed from the
// aggregator, persists both, and regenerates the billing cycles. Aggregator
// failures propagate unchanged so callers see the circuit state.
func (s *SyncService) RefreshCard(ctx context.Context, cardID string) ([]domain.BillingCycle, error) {
	ctx, span := tracer.Start(ctx, "SyncService.RefreshCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("refresh_card", time.Since(start)) }()

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.aggregator.GetCardSnapshot(ctx, card.ItemID, card.AccountID)
	if err != nil {
		s.metrics.IncrExternalError("aggregator")
		return nil, err
	}

	txns, err := s.aggregator.GetTransactions(ctx, card.ItemID, card.AccountID)
	if err != nil {
		s.metrics.IncrExternalError("aggregator")
		return nil, err
	}
	for i := range txns {
		txns[i].CardID = card.ID
	}

	card.ApplySnapshot(snapshot)
	if err := s.store.UpsertCard(ctx, card); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceTransactions(ctx, cardID, txns); err != nil {
		return nil, err
	}

	s.logger.Info("card refreshed from aggregator",
		zap.String("card_id", cardID),
		zap.Int("transactions", len(txns)),
	)

	return s.cycles.Regenerate(ctx, cardID)
}

// RefreshItem refreshes every card under one aggregator connection. Webhooks
// arrive per item, not per card. One broken card does not stop the item's
// remaining cards from refreshing; failures are joined into the returned
// error.
func (s *SyncService) RefreshItem(ctx context.Context, itemID string) error {
	ctx, span := tracer.Start(ctx, "SyncService.RefreshItem")
	defer span.End()
	span.SetAttributes(attribute.String("item.id", itemID))

	cardIDs, err := s.store.ListCardIDsByItem(ctx, itemID)
	if err != nil {
		return err
	}
	if len(cardIDs) == 0 {
		s.logger.Debug("no cards for item", zap.String("item_id", itemID))
		return nil
	}

	var errs []error
	for _, cardID := range cardIDs {
		if _, err := s.RefreshCard(ctx, cardID); err != nil {
			s.logger.Error("item refresh: card failed",
				zap.String("item_id", itemID),
				zap.String("card_id", cardID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("card %s: %w", cardID, err))
		}
	}
	return errors.Join(errs...)
}

// SweepResult summarizes one full sweep across all cards.
type SweepResult struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// SweepAll refreshes every known card. Individual card failures are logged
// and reported in the result but do not abort the sweep; one broken
// connection must not starve the rest of the fleet.
func (s *SyncService) SweepAll(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "SyncService.SweepAll")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("sweep", time.Since(start)) }()

	cardIDs, err := s.store.ListCardIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Total: len(cardIDs)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.sweepLimit)
	for _, cardID := range cardIDs {
		cardID := cardID
		g.Go(func() error {
			_, err := s.RefreshCard(gctx, cardID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.FailedIDs = append(result.FailedIDs, cardID)
				s.logger.Error("sweep: card refresh failed",
					zap.String("card_id", cardID),
					zap.Error(err),
				)
			} else {
				result.Succeeded++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("sweep finished",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
