// Package loadpolicy decides when the engine should grow or shrink its
// bucket table. It is adapted from the CLOCK-Pro eviction state machine this
// module grew out of: same shape (a small piece of bookkeeping consulted on
// every mutating call, deciding whether an expensive action is warranted
// right now), but this engine has no eviction policy at all (spec.md's
// Non-goals exclude per-entry TTL and any capacity-based eviction — the only
// capacity response is resize). What CLOCK-Pro's hot/cold/test promotion
// logic decided here, load-factor threshold tracking decides instead.
//
// © 2025 hashtable-engine authors. MIT License.
package loadpolicy

import "time"

const (
	// MinCapacity is the smallest table size the engine ever allocates.
	MinCapacity = 16
	// MaxCapacity is the largest table size the engine ever allocates.
	MaxCapacity = 1 << 20 // 1,048,576

	// DefaultMaxLoadFactor is the growth threshold: crossing it on a put
	// triggers a grow before the insert is retried.
	DefaultMaxLoadFactor = 0.75
	// DefaultMinLoadFactor is the shrink threshold: dropping below it on a
	// delete is eligible to trigger a shrink.
	DefaultMinLoadFactor = 0.2
	// DefaultShrinkCooldown disables the time-based hysteresis window by
	// default: a table is eligible to shrink as soon as it crosses
	// MinLoadFactor, subject only to the post-shrink safety margin below.
	// Callers who see shrink/grow oscillation in their workload can widen
	// this via pkg.WithShrinkCooldown.
	DefaultShrinkCooldown = 0 * time.Second
)

// Policy holds the threshold knobs (overridable for experimentation via
// pkg.Config) used to evaluate grow/shrink decisions.
type Policy struct {
	MaxLoadFactor float64
	MinLoadFactor float64
	// ShrinkCooldown is the minimum time the current generation (see
	// internal/epoch) must have existed before a shrink is considered. Zero
	// means no cooldown: only the load-factor threshold and the post-shrink
	// safety margin gate the decision.
	ShrinkCooldown time.Duration
}

// New constructs a Policy with the spec-mandated default thresholds.
func New() Policy {
	return Policy{
		MaxLoadFactor:  DefaultMaxLoadFactor,
		MinLoadFactor:  DefaultMinLoadFactor,
		ShrinkCooldown: DefaultShrinkCooldown,
	}
}

// ShouldGrow reports whether inserting one more item (itemCount+1) into a
// table of the given capacity would exceed MaxLoadFactor. There is no
// hysteresis on growth: spec.md §4.4.2 step 2 re-evaluates this on every put,
// and growth is never reversed by a subsequent put.
func (p Policy) ShouldGrow(itemCount, capacity int) bool {
	if capacity <= 0 {
		return true
	}
	return float64(itemCount+1)/float64(capacity) > p.MaxLoadFactor
}

// GrowTarget returns the next capacity to grow to: double the current
// capacity, clamped to MaxCapacity.
func GrowTarget(capacity int) int {
	target := capacity * 2
	if target > MaxCapacity || target <= 0 {
		target = MaxCapacity
	}
	return target
}

// ShrinkTarget returns the capacity to shrink to after a delete, or 0 if no
// shrink should happen right now. Per spec.md §4.4.4, shrinking is
// considered when capacity > MinCapacity and the load factor has dropped
// below MinLoadFactor; the natural target is max(capacity/2, MinCapacity).
// sinceLastResize is how long the current generation has existed (see
// internal/epoch); if it is shorter than ShrinkCooldown, the shrink is
// refused outright — a table that was just grown (or just shrunk) is given
// time to settle before it is allowed to shrink again, per spec.md §9's
// "Shrink policy" note. Independently of the cooldown, per that same note,
// halving on every delete that merely crosses the threshold can still cause
// oscillation right at the boundary, so the halved target is only taken
// when the resulting load factor would stay at or below 0.5 — otherwise a
// later put would immediately have to grow back.
func (p Policy) ShrinkTarget(itemCount, capacity int, sinceLastResize time.Duration) int {
	if capacity <= MinCapacity {
		return 0
	}
	if sinceLastResize < p.ShrinkCooldown {
		return 0
	}
	if float64(itemCount)/float64(capacity) >= p.MinLoadFactor {
		return 0
	}
	target := capacity / 2
	if target < MinCapacity {
		target = MinCapacity
	}
	if target == capacity {
		return 0
	}
	if float64(itemCount)/float64(target) > 0.5 {
		return 0
	}
	return target
}
