// Package hashengine implements an in-process key/value storage engine on
// an open-addressed hash table with linear probing, tombstone-based
// deletion, SipHash-2-4 keyed indexing, and automatic grow/shrink resizing
// under a load-factor policy.
//
// It is adapted from a sharded LRU cache this module grew out of: the
// sharding concept is dropped (this engine is a single table behind a
// single lock, per spec.md §4.4 and §5), but the surrounding shape —
// functional options, a pluggable zap logger, an opt-in Prometheus metrics
// sink — survives unchanged.
//
// © 2025 hashtable-engine authors. MIT License.
package hashengine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/hashtable-engine/internal/epoch"
	"github.com/Voskan/hashtable-engine/internal/loadpolicy"
	"github.com/Voskan/hashtable-engine/internal/siphash"
	"github.com/Voskan/hashtable-engine/internal/slab"
	"github.com/Voskan/hashtable-engine/internal/table"
)

// Engine is the storage engine (C4): it owns the current bucket table, the
// item count, the load-factor policy, the hash keys, and the lock that
// serializes every operation against them.
type Engine struct {
	mu sync.RWMutex

	tbl  *table.Table
	slb  *slab.Slab
	keys siphash.Keys

	itemCount int
	memBytes  int64

	policy  loadpolicy.Policy
	epochs  *epoch.Tracker
	logger  *zap.Logger
	metrics metricsSink
}

// New constructs an Engine whose initial table has the given capacity,
// clamped into [loadpolicy.MinCapacity, loadpolicy.MaxCapacity]. capacity
// must be positive; init never calls resize internally (spec.md §9 Open
// Questions #1) — the initial table is allocated directly.
func New(capacity int, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	applyOptions(cfg, opts)

	if capacity <= 0 {
		capacity = cfg.initialCapacity
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive (pass it directly or via WithInitialCapacity), got %d", ErrInvalidArgument, capacity)
	}
	if capacity < loadpolicy.MinCapacity {
		capacity = loadpolicy.MinCapacity
	}
	if capacity > loadpolicy.MaxCapacity {
		capacity = loadpolicy.MaxCapacity
	}

	tbl, err := allocateTable(capacity)
	if err != nil {
		return nil, err
	}

	keys, weak := siphash.NewKeys()

	e := &Engine{
		tbl:     tbl,
		slb:     slab.New(0),
		keys:    keys,
		policy:  cfg.policy,
		epochs:  epoch.New(capacity),
		logger:  cfg.logger,
		metrics: newMetricsSink(cfg.registry),
	}

	if weak {
		e.logger.Warn("hashengine: falling back to non-cryptographic hash keys",
			zap.String("reason", "crypto/rand unavailable"))
	}

	e.metrics.setCapacity(capacity)
	e.metrics.setItems(0)
	e.metrics.setMemoryBytes(0)

	return e, nil
}

// allocateTable wraps table.New with a recover so a runtime allocation
// failure (Go's make panics rather than returning an error) surfaces as
// ErrOutOfMemory per spec.md §7, instead of crashing the process.
func allocateTable(capacity int) (tbl *table.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			tbl = nil
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()
	tbl = table.New(capacity)
	return tbl, nil
}

func validateBytes(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: must be non-empty", ErrInvalidArgument)
	}
	return nil
}

// Put inserts or updates the value for key (spec.md §4.4.2). A pre-existing
// content-equal key has its value overwritten in place without changing
// ItemCount; otherwise a fresh entry is created, growing the table first if
// the projected load factor would exceed the configured MaxLoadFactor.
func (e *Engine) Put(key, value []byte) error {
	if err := validateBytes(key); err != nil {
		return err
	}
	if err := validateBytes(value); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.incPut()

	for {
		capacity := e.tbl.Capacity()
		if capacity < loadpolicy.MaxCapacity && e.policy.ShouldGrow(e.itemCount, capacity) {
			if err := e.resizeLocked(loadpolicy.GrowTarget(capacity)); err != nil {
				return err
			}
			continue
		}

		if e.tryPutLocked(key, value) {
			return nil
		}

		// Saturated: capacity steps produced no Empty cell and no match.
		if e.tbl.Capacity() >= loadpolicy.MaxCapacity {
			return ErrNoSpace
		}
		if err := e.resizeLocked(loadpolicy.GrowTarget(e.tbl.Capacity())); err != nil {
			return err
		}
	}
}

// tryPutLocked performs one linear-probe pass over the current table and
// returns true once key has been inserted or overwritten. It returns false
// when the probe chain is saturated (capacity steps produced no Empty cell
// and no match) and a resize is required before retrying.
func (e *Engine) tryPutLocked(key, value []byte) bool {
	capacity := e.tbl.Capacity()
	start := e.tbl.IndexOf(e.keys.Hash(key))
	reuse := -1
	idx := start

	for steps := 0; steps < capacity; steps++ {
		b := e.tbl.At(idx)
		switch {
		case b.IsEmpty():
			insertAt := idx
			if reuse != -1 {
				insertAt = reuse
			}
			e.tbl.At(insertAt).Put(key, value, e.slb.CopyInto)
			e.itemCount++
			e.memBytes += int64(len(key) + len(value))
			e.metrics.setItems(e.itemCount)
			e.metrics.setMemoryBytes(e.memBytes)
			return true
		case b.IsTombstone():
			if reuse == -1 {
				reuse = idx
			}
		case b.IsOccupied():
			if b.KeyEquals(key) {
				oldLen := len(b.Value)
				b.Overwrite(value, e.slb.CopyInto)
				e.memBytes += int64(len(value) - oldLen)
				e.metrics.setMemoryBytes(e.memBytes)
				return true
			}
		}
		idx = e.tbl.Next(idx)
	}
	return false
}

// Get returns a copy of the value stored for key (spec.md §9 Open Questions
// #2: Get never returns a borrowed pointer into engine memory, so the
// result stays valid across any later resize).
func (e *Engine) Get(key []byte) ([]byte, error) {
	if err := validateBytes(key); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	e.metrics.incGet()

	capacity := e.tbl.Capacity()
	idx := e.tbl.IndexOf(e.keys.Hash(key))

	for steps := 0; steps < capacity; steps++ {
		b := e.tbl.At(idx)
		switch {
		case b.IsEmpty():
			e.metrics.incMiss()
			return nil, ErrNotFound
		case b.IsOccupied():
			if b.KeyEquals(key) {
				out := make([]byte, len(b.Value))
				copy(out, b.Value)
				e.metrics.incHit()
				return out, nil
			}
		}
		idx = e.tbl.Next(idx)
	}
	e.metrics.incMiss()
	return nil, ErrNotFound
}

// Delete removes key (spec.md §4.4.4), converting its bucket to a
// Tombstone. On success it evaluates the shrink policy and, if warranted,
// resizes down. A shrink allocation failure is ignored: the engine remains
// correct at its current capacity (best-effort, per spec.md §4.4.4 step 3).
func (e *Engine) Delete(key []byte) error {
	if err := validateBytes(key); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	capacity := e.tbl.Capacity()
	idx := e.tbl.IndexOf(e.keys.Hash(key))

	for steps := 0; steps < capacity; steps++ {
		b := e.tbl.At(idx)
		switch {
		case b.IsEmpty():
			return ErrNotFound
		case b.IsOccupied():
			if b.KeyEquals(key) {
				e.memBytes -= int64(len(b.Key) + len(b.Value))
				b.MakeTombstone()
				e.itemCount--
				e.metrics.incDelete()
				e.metrics.incTombstone()
				e.metrics.setItems(e.itemCount)
				e.metrics.setMemoryBytes(e.memBytes)

				sinceResize := time.Since(e.epochs.Current().CreatedAt)
				if target := e.policy.ShrinkTarget(e.itemCount, e.tbl.Capacity(), sinceResize); target > 0 {
					_ = e.resizeLocked(target) // best-effort
				}
				return nil
			}
		}
		idx = e.tbl.Next(idx)
	}
	return ErrNotFound
}

// Stats is the read-only snapshot exposed by C6.
type Stats struct {
	ItemCount int
	Capacity  int
	Memory    int64
}

// Stats reads a consistent snapshot of item count, capacity, and memory
// accounting (spec.md §4.4.5, §4.6).
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		ItemCount: e.itemCount,
		Capacity:  e.tbl.Capacity(),
		Memory:    e.memBytes,
	}
}

// VerboseStats extends Stats with diagnostics outside spec.md's required
// fields (§4 "Stats surface extras"): a tombstone count and the current
// resize generation id. Neither field participates in any invariant.
type VerboseStats struct {
	Stats
	TombstoneCount int
	Generation     uint64
}

// StatsVerbose returns VerboseStats. It walks the table to count
// tombstones, so it is O(capacity) — unlike Stats, which is O(1).
func (e *Engine) StatsVerbose() VerboseStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var tombstones int
	capacity := e.tbl.Capacity()
	for i := 0; i < capacity; i++ {
		if e.tbl.At(i).IsTombstone() {
			tombstones++
		}
	}

	return VerboseStats{
		Stats: Stats{
			ItemCount: e.itemCount,
			Capacity:  capacity,
			Memory:    e.memBytes,
		},
		TombstoneCount: tombstones,
		Generation:     e.epochs.Current().ID,
	}
}

// resizeLocked implements the resize controller (C5, spec.md §4.5). The
// caller must already hold e.mu for writing. It allocates a new table of
// size target, rehashes every Occupied bucket into it (tombstones are
// discarded), and — if pathological clustering leaves an entry unplaced —
// doubles the target and retries, bounded by MaxCapacity.
func (e *Engine) resizeLocked(target int) error {
	if target < loadpolicy.MinCapacity {
		target = loadpolicy.MinCapacity
	}
	if target > loadpolicy.MaxCapacity {
		target = loadpolicy.MaxCapacity
	}

	direction := "grow"
	if target < e.tbl.Capacity() {
		direction = "shrink"
	}

	for {
		newTbl, err := allocateTable(target)
		if err != nil {
			return err
		}
		newSlab := slab.New(0)

		placed := true
		oldCapacity := e.tbl.Capacity()
		for i := 0; i < oldCapacity; i++ {
			b := e.tbl.At(i)
			if !b.IsOccupied() {
				continue
			}
			if !placeInto(newTbl, newSlab, e.keys.Hash(b.Key), b.Key, b.Value) {
				placed = false
				break
			}
		}

		if placed {
			oldCap := e.tbl.Capacity()
			e.tbl = newTbl
			e.slb = newSlab
			gen := e.epochs.Advance(target)
			e.metrics.incResize(direction)
			e.metrics.setCapacity(target)
			e.logger.Debug("hashengine: resized",
				zap.Int("old_capacity", oldCap),
				zap.Int("new_capacity", target),
				zap.String("direction", direction),
				zap.Uint64("generation", gen.ID))
			return nil
		}

		if target >= loadpolicy.MaxCapacity {
			return ErrNoSpace
		}
		target = loadpolicy.GrowTarget(target)
	}
}

// placeInto inserts (key, value) into tbl via linear probing from hash mod
// tbl.Capacity(), copying the bytes through slb. It returns false if no
// Empty cell is found within a full cycle (pathological clustering).
func placeInto(tbl *table.Table, slb *slab.Slab, hash uint64, key, value []byte) bool {
	capacity := tbl.Capacity()
	idx := tbl.IndexOf(hash)
	for steps := 0; steps < capacity; steps++ {
		b := tbl.At(idx)
		if b.IsEmpty() {
			b.Put(key, value, slb.CopyInto)
			return true
		}
		idx = tbl.Next(idx)
	}
	return false
}

// Destroy releases the engine's resources. After Destroy, the Engine must
// not be used again.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tbl = nil
	e.slb = nil
}
