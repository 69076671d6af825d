// Package bucket implements the tri-state cell (C2) that makes up a bucket
// table: every cell is Empty, Occupied, or Tombstone, never anything else.
//
// The source this module was distilled from overloaded a null key pointer
// plus a nonzero length to encode Tombstone, which invites an entire class
// of pointer-encoding bugs. This package instead uses an explicit State enum
// so the three-way distinction is checked by the type system's nearest
// equivalent — a byte comparison — rather than inferred from field values.
//
// © 2025 hashtable-engine authors. MIT License.
package bucket

// State is the tri-value a Bucket can be in.
type State uint8

const (
	Empty State = iota
	Occupied
	Tombstone
)

// Bucket is one cell of a bucket table. Key and Value are engine-owned
// copies of the caller's bytes (spec.md §9 "Borrow-vs-copy": this module
// takes the deep-copy option), valid only while State == Occupied.
type Bucket struct {
	State State
	Key   []byte
	Value []byte
}

// IsEmpty reports whether the cell has never been written since the last
// resize. An Empty cell terminates probe chains.
func (b *Bucket) IsEmpty() bool { return b.State == Empty }

// IsOccupied reports whether the cell currently holds a live (key, value)
// pair.
func (b *Bucket) IsOccupied() bool { return b.State == Occupied }

// IsTombstone reports whether the cell was Occupied and has since been
// deleted. A Tombstone does not terminate probe chains but is eligible for
// reuse on insertion.
func (b *Bucket) IsTombstone() bool { return b.State == Tombstone }

// Put writes a fresh (key, value) pair into the cell and marks it Occupied.
// The caller owns key/value's backing arrays until this call returns; Put
// copies both into engine-owned memory (via copyInto, typically backed by a
// slab allocator) so the caller's buffers may be reused or discarded
// immediately afterward.
func (b *Bucket) Put(key, value []byte, copyInto func(dst, src []byte) []byte) {
	b.Key = copyInto(nil, key)
	b.Value = copyInto(nil, value)
	b.State = Occupied
}

// Overwrite replaces the value of an already-Occupied cell holding a
// content-equal key, preserving invariant #3 (no duplicate keys). The key
// descriptor is left untouched: the match that led here already established
// the keys are byte-identical (spec.md §9, overwrite-length-delta note).
func (b *Bucket) Overwrite(value []byte, copyInto func(dst, src []byte) []byte) {
	b.Value = copyInto(nil, value)
}

// MakeTombstone converts an Occupied cell into a Tombstone, releasing its
// reference to the key/value descriptors per the ownership model: once the
// cell is a ghost, nothing should dereference its former key/value bytes.
func (b *Bucket) MakeTombstone() {
	b.State = Tombstone
	b.Key = nil
	b.Value = nil
}

// Reset returns the cell to its initial, post-resize state: Empty.
func (b *Bucket) Reset() {
	b.State = Empty
	b.Key = nil
	b.Value = nil
}

// KeyEquals reports whether the cell's key is content-equal to key. Callers
// must only invoke this on an Occupied bucket.
func (b *Bucket) KeyEquals(key []byte) bool {
	if len(b.Key) != len(key) {
		return false
	}
	for i := range key {
		if b.Key[i] != key[i] {
			return false
		}
	}
	return true
}
