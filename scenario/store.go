package scenario

import "context"

// =============================================================================
// SNAPSHOT STORE - Persistence collaborator
// =============================================================================

// SnapshotStore persists whole snapshots. The engine never calls it; the
// holder (store/memory) and the HTTP layer do.
//
// Implementations:
//   - store/sqlite: SQLite tables for scenarios, entity rows and overlays
type SnapshotStore interface {
	// Save replaces the persisted state with snap, atomically.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the persisted snapshot, or an empty one if nothing was
	// saved yet.
	Load(ctx context.Context) (*Snapshot, error)
}
