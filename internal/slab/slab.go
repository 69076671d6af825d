// Package slab implements a bump allocator for the byte copies a bucket
// table makes of caller-supplied keys and values. It is adapted from the
// arena wrapper this module grew out of: no pooling, no stats, no GC hooks —
// those concerns belong to upper layers (engine, epoch). The difference is
// that this version allocates from ordinary growable []byte blocks instead
// of the experimental arena stdlib package, so the module builds under any
// stock Go toolchain rather than only under GOEXPERIMENT=arenas.
//
// Concurrency: a Slab is not thread-safe. In this module the owning engine
// already serializes mutation with its own lock, so no locking is added
// here (same rule the teacher arena package followed).
//
// © 2025 hashtable-engine authors. MIT License.
package slab

import "github.com/Voskan/hashtable-engine/internal/unsafehelpers"

// defaultBlockSize is the size of each backing block. Must be a power of
// two — checked once at package init via IsPowerOfTwo so a typo here fails
// loudly instead of silently degrading bump-allocation locality.
const defaultBlockSize = 64 * 1024

func init() {
	if !unsafehelpers.IsPowerOfTwo(uintptr(defaultBlockSize)) {
		panic("slab: defaultBlockSize must be a power of two")
	}
}

// Slab is a bump allocator: AllocBytes copies its argument into a growing
// backing block and returns a slice into that block. Nothing is ever freed
// individually — the whole Slab is dropped at once when its owning table
// generation is replaced (see internal/epoch).
type Slab struct {
	blocks   [][]byte
	cur      []byte // current block, len==cap tracks used bytes via len
	blockCap int
}

// New constructs an empty Slab. blockSizeHint, if positive, overrides the
// default block size (rounded up to a multiple of 8); callers with a good
// estimate of total live bytes can reduce the number of block allocations.
func New(blockSizeHint int) *Slab {
	size := defaultBlockSize
	if blockSizeHint > 0 {
		size = int(unsafehelpers.AlignUp(uintptr(blockSizeHint), 8))
	}
	return &Slab{blockCap: size}
}

// AllocBytes copies src into the slab and returns the copy. The returned
// slice is valid until the Slab itself is discarded.
func (s *Slab) AllocBytes(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	// Oversized single allocations get their own dedicated block rather than
	// forcing every future allocation to round up to their size.
	if len(src) > s.blockCap {
		block := make([]byte, len(src))
		copy(block, src)
		s.blocks = append(s.blocks, block)
		return block
	}

	if s.cur == nil || len(s.cur)+len(src) > cap(s.cur) {
		s.cur = make([]byte, 0, s.blockCap)
		s.blocks = append(s.blocks, s.cur)
	}

	start := len(s.cur)
	s.cur = s.cur[:start+len(src)]
	copy(s.cur[start:], src)
	out := s.cur[start : start+len(src) : start+len(src)]

	// Keep blocks[len-1] pointing at the grown slice header.
	s.blocks[len(s.blocks)-1] = s.cur
	return out
}

// CopyInto adapts AllocBytes to the bucket.Bucket copyInto signature; dst is
// ignored, the slab always supplies fresh backing memory.
func (s *Slab) CopyInto(_ []byte, src []byte) []byte {
	return s.AllocBytes(src)
}

// Bytes returns the total number of bytes currently held across all blocks
// (used, not capacity) — an approximation good enough for diagnostics; it
// does not shrink when individual entries are tomb-stoned, matching
// spec.md's "memory_accounting" being an approximation, not an exact figure
// tracked at the slab level (the engine tracks the precise figure itself).
func (s *Slab) Bytes() int64 {
	var total int64
	for _, b := range s.blocks {
		total += int64(len(b))
	}
	return total
}
