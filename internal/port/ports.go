// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the derivation and
// service layer from the aggregator and from the persistence backend.
package port

import (
	"context"
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
)

// CardStore handles persisted card records.
type CardStore interface {
	GetCard(ctx context.Context, cardID string) (*domain.Card, error)
	ListCardIDs(ctx context.Context) ([]string, error)
	ListCardIDsByItem(ctx context.Context, itemID string) ([]string, error)
	UpsertCard(ctx context.Context, card *domain.Card) error
	UpdateCardOpenDate(ctx context.Context, cardID string, openedAt time.Time) error
}

// TransactionStore handles the persisted transaction feed.
type TransactionStore interface {
	ListTransactions(ctx context.Context, cardID string) ([]domain.Transaction, error)
	// ReplaceTransactions swaps a card's feed wholesale during a resync
	// window. Derived data is regenerated afterwards, so this does not need
	// to be atomic with anything else.
	ReplaceTransactions(ctx context.Context, cardID string, txns []domain.Transaction) error
}

// CycleStore handles derived billing-cycle rows.
type CycleStore interface {
	ListBillingCycles(ctx context.Context, cardID string) ([]domain.BillingCycle, error)
	// ReplaceBillingCycles atomically deletes the card's existing cycle rows
	// and inserts the fresh set. Either the whole swap lands or none of it;
	// a partial cycle set must never be observable.
	ReplaceBillingCycles(ctx context.Context, cardID string, cycles []domain.BillingCycle) error
}

// Store is the full persistence surface, implemented by the Supabase
// adapter (or an in-memory fake in tests).
type Store interface {
	CardStore
	TransactionStore
	CycleStore
}

// AggregatorSource is the black-box bank-data aggregator: a snapshot of
// balances and statement metadata per account, plus a transaction feed.
// The core treats it as a synchronous data source with no retry policy of
// its own; retries live in the client adapter, not here.
type AggregatorSource interface {
	GetCardSnapshot(ctx context.Context, itemID, accountID string) (*domain.CardSnapshot, error)
	GetTransactions(ctx context.Context, itemID, accountID string) ([]domain.Transaction, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
