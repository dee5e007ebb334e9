/*
scheduler.go - Periodic snapshot autosave

PURPOSE:
  Edits only change the in-memory snapshot. The autosaver periodically
  flushes it to the SnapshotStore when it changed, and once more on Stop,
  so a clean shutdown never loses edits.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Skips the write when nothing changed since the last flush
  - A failed flush keeps the snapshot dirty; the next tick retries

CONFIGURATION:
  - Interval: How often to check (default: 30 seconds, config "autosave")
  - Enabled: Whether the autosaver is active (default: true)

USAGE:
  saver := NewAutosaver(mem, store, metrics)
  saver.Start()
  // ... later
  saver.Stop()

SEE ALSO:
  - handlers.go: POST /api/save (manual flush)
  - store/memory: Dirty tracking and Flush
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kitaplan/capacity-engine/scenario"
	"github.com/kitaplan/capacity-engine/store/memory"
)

// Autosaver flushes the live snapshot to persistence.
type Autosaver struct {
	Memory   *memory.Memory
	Store    scenario.SnapshotStore
	Metrics  *Metrics
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutosaver creates an autosaver. metrics may be nil.
func NewAutosaver(mem *memory.Memory, store scenario.SnapshotStore, metrics *Metrics) *Autosaver {
	return &Autosaver{
		Memory:   mem,
		Store:    store,
		Metrics:  metrics,
		Interval: 30 * time.Second,
		Enabled:  true,
	}
}

// Start begins the autosave loop.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.Enabled || a.Store == nil || a.Interval <= 0 {
		log.Println("[Autosave] Disabled, not starting")
		return
	}
	if a.ticker != nil {
		return
	}

	a.ticker = time.NewTicker(a.Interval)
	a.stop = make(chan struct{})
	a.wg.Add(1)

	go a.run(a.ticker, a.stop)

	log.Printf("[Autosave] Started with interval: %v", a.Interval)
}

// Stop ends the loop and performs a final flush. It flushes even when the
// loop never started.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ticker != nil {
		a.ticker.Stop()
		close(a.stop)
		a.wg.Wait()
		a.ticker = nil
		log.Println("[Autosave] Stopped")
	}
	a.RunNow(context.Background())
}

func (a *Autosaver) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer a.wg.Done()

	for {
		select {
		case <-ticker.C:
			a.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow flushes immediately if the snapshot is dirty. It reports whether
// anything was written.
func (a *Autosaver) RunNow(ctx context.Context) bool {
	if a.Store == nil {
		return false
	}
	saved, err := a.Memory.Flush(ctx, a.Store)
	switch {
	case err != nil:
		log.Printf("[Autosave] Error saving snapshot: %v", err)
		a.record("error")
	case saved:
		log.Printf("[Autosave] Saved %d scenarios", len(a.Memory.Snapshot().Scenarios))
		a.record("saved")
	default:
		a.record("clean")
	}
	return saved
}

func (a *Autosaver) record(result string) {
	if a.Metrics != nil {
		a.Metrics.autosaved(result)
	}
}
