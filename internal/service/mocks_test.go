package service

import (
	"context"
	"sync"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
)

// ============================================================
// Hand-written mocks
// ============================================================

type mockStore struct {
	getCardFn            func(ctx context.Context, cardID string) (*domain.Card, error)
	listCardIDsFn        func(ctx context.Context) ([]string, error)
	listCardIDsByItemFn  func(ctx context.Context, itemID string) ([]string, error)
	upsertCardFn         func(ctx context.Context, card *domain.Card) error
	updateOpenDateFn     func(ctx context.Context, cardID string, openedAt time.Time) error
	listTransactionsFn   func(ctx context.Context, cardID string) ([]domain.Transaction, error)
	replaceTxnsFn        func(ctx context.Context, cardID string, txns []domain.Transaction) error
	listCyclesFn         func(ctx context.Context, cardID string) ([]domain.BillingCycle, error)
	replaceCyclesFn      func(ctx context.Context, cardID string, cycles []domain.BillingCycle) error
}

func (m *mockStore) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	return m.getCardFn(ctx, cardID)
}

func (m *mockStore) ListCardIDs(ctx context.Context) ([]string, error) {
	return m.listCardIDsFn(ctx)
}

func (m *mockStore) ListCardIDsByItem(ctx context.Context, itemID string) ([]string, error) {
	return m.listCardIDsByItemFn(ctx, itemID)
}

func (m *mockStore) UpsertCard(ctx context.Context, card *domain.Card) error {
	if m.upsertCardFn == nil {
		return nil
	}
	return m.upsertCardFn(ctx, card)
}

func (m *mockStore) UpdateCardOpenDate(ctx context.Context, cardID string, openedAt time.Time) error {
	if m.updateOpenDateFn == nil {
		return nil
	}
	return m.updateOpenDateFn(ctx, cardID, openedAt)
}

func (m *mockStore) ListTransactions(ctx context.Context, cardID string) ([]domain.Transaction, error) {
	return m.listTransactionsFn(ctx, cardID)
}

func (m *mockStore) ReplaceTransactions(ctx context.Context, cardID string, txns []domain.Transaction) error {
	if m.replaceTxnsFn == nil {
		return nil
	}
	return m.replaceTxnsFn(ctx, cardID, txns)
}

func (m *mockStore) ListBillingCycles(ctx context.Context, cardID string) ([]domain.BillingCycle, error) {
	return m.listCyclesFn(ctx, cardID)
}

func (m *mockStore) ReplaceBillingCycles(ctx context.Context, cardID string, cycles []domain.BillingCycle) error {
	return m.replaceCyclesFn(ctx, cardID, cycles)
}

type mockCache struct {
	mu   sync.Mutex
	data map[string][]domain.BillingCycle
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]domain.BillingCycle)}
}

func (m *mockCache) Get(key string) ([]domain.BillingCycle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(key string, value []domain.BillingCycle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *mockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

type mockAggregator struct {
	getSnapshotFn     func(ctx context.Context, itemID, accountID string) (*domain.CardSnapshot, error)
	getTransactionsFn func(ctx context.Context, itemID, accountID string) ([]domain.Transaction, error)
}

func (m *mockAggregator) GetCardSnapshot(ctx context.Context, itemID, accountID string) (*domain.CardSnapshot, error) {
	return m.getSnapshotFn(ctx, itemID, accountID)
}

func (m *mockAggregator) GetTransactions(ctx context.Context, itemID, accountID string) ([]domain.Transaction, error) {
	return m.getTransactionsFn(ctx, itemID, accountID)
}
