// Package locks provides per-key mutual exclusion.
//
// Regeneration for a card is a delete-then-recreate sequence; two callers
// racing on the same card could have the loser delete the winner's freshly
// inserted rows. A keyed mutex serializes callers per card id while leaving
// different cards fully parallel.
package locks

import "sync"

// Keyed is a set of named mutexes. Locks are created on first use and kept
// for the process lifetime; the key space (card ids under management) is
// small enough that reclaiming them is not worth the bookkeeping.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyed creates an empty keyed mutex set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, blocking while another caller holds it,
// and returns the unlock function.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
