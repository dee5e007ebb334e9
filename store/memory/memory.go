// Package memory holds the live snapshot of the engine.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kitaplan/capacity-engine/scenario"
)

// =============================================================================
// MEMORY STORE - Copy-on-write snapshot holder
// =============================================================================

// Memory owns the current snapshot. Readers get the current pointer and
// must treat it as read-only; writers go through Update, which mutates a
// clone and swaps it in. A reader therefore never sees a half-applied
// update, and the next reader sees the write.
//
// Memory also satisfies scenario.SnapshotStore, which makes it usable as
// a persistence stand-in for tests and runs without a database.
type Memory struct {
	mu      sync.RWMutex
	snap    *scenario.Snapshot
	version uint64
	saved   uint64
}

func New(snap *scenario.Snapshot) *Memory {
	if snap == nil {
		snap = scenario.NewSnapshot()
	}
	return &Memory{snap: snap}
}

// Snapshot returns the current snapshot. Do not mutate it.
func (m *Memory) Snapshot() *scenario.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Update applies fn to a copy of the current snapshot. If fn fails the copy
// is discarded and the current snapshot stays in place.
func (m *Memory) Update(_ context.Context, fn func(*scenario.Snapshot) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.snap = next
	m.version++
	return nil
}

// Replace swaps in a new snapshot, e.g. after an import.
func (m *Memory) Replace(snap *scenario.Snapshot) {
	if snap == nil {
		snap = scenario.NewSnapshot()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.version++
}

// Dirty reports whether there are changes not yet flushed.
func (m *Memory) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version != m.saved
}

// Flush saves the snapshot to store if it changed since the last flush.
// It reports whether anything was written.
func (m *Memory) Flush(ctx context.Context, store scenario.SnapshotStore) (bool, error) {
	m.mu.RLock()
	snap, version, saved := m.snap, m.version, m.saved
	m.mu.RUnlock()

	if version == saved {
		return false, nil
	}
	if err := store.Save(ctx, snap); err != nil {
		return false, fmt.Errorf("flush snapshot: %w", err)
	}

	m.mu.Lock()
	if version > m.saved {
		m.saved = version
	}
	m.mu.Unlock()
	return true, nil
}

// =============================================================================
// scenario.SnapshotStore
// =============================================================================

// Save stores a copy of snap and marks it as persisted.
func (m *Memory) Save(_ context.Context, snap *scenario.Snapshot) error {
	clone := snap.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = clone
	m.version++
	m.saved = m.version
	return nil
}

// Load returns a copy of the current snapshot.
func (m *Memory) Load(_ context.Context) (*scenario.Snapshot, error) {
	return m.Snapshot().Clone(), nil
}
