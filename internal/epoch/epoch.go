// Package epoch tracks the sequence of table generations a hashtable engine
// has gone through. It is adapted from the TTL-bounded generation ring this
// module grew out of: same "a generation has an id and a creation time"
// shape, but rotation is now driven by resize (spec.md §4.5) instead of a
// wall-clock TTL, because this engine has no TTL concept at all — it is
// purely a capacity-driven grow/shrink structure.
//
// A Tracker exists so Engine.StatsVerbose can report which generation is
// live, so operators can see resize history in logs, and so
// internal/loadpolicy can measure how long the current generation has
// existed when deciding whether a shrink cooldown has elapsed.
//
// © 2025 hashtable-engine authors. MIT License.
package epoch

import "time"

// Generation describes one table allocation: its stable id, the capacity it
// was allocated with, and when it was created.
type Generation struct {
	ID        uint64
	Capacity  int
	CreatedAt time.Time
}

// historyLimit bounds how many past generations Tracker remembers, so a
// long-lived engine that resizes often doesn't grow this bookkeeping
// without bound.
const historyLimit = 16

// Tracker records the current generation and a short history of the ones
// before it. Not safe for concurrent use; the owning engine already
// serializes every call that touches it.
type Tracker struct {
	current Generation
	history []Generation
}

// New constructs a Tracker whose first generation (id 1) has the given
// initial capacity.
func New(initialCapacity int) *Tracker {
	return &Tracker{current: Generation{ID: 1, Capacity: initialCapacity, CreatedAt: time.Now()}}
}

// Current returns the live generation.
func (t *Tracker) Current() Generation { return t.current }

// Advance retires the current generation into history and starts a new one
// with the given capacity, returning it.
func (t *Tracker) Advance(newCapacity int) Generation {
	t.history = append(t.history, t.current)
	if len(t.history) > historyLimit {
		t.history = t.history[len(t.history)-historyLimit:]
	}
	t.current = Generation{ID: t.current.ID + 1, Capacity: newCapacity, CreatedAt: time.Now()}
	return t.current
}

// History returns a copy of the generations preceding the current one,
// oldest first, bounded by historyLimit.
func (t *Tracker) History() []Generation {
	out := make([]Generation, len(t.history))
	copy(out, t.history)
	return out
}
