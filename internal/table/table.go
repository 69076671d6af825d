// Package table implements the fixed-capacity bucket array (C3): indexed
// access, modular indexing, and the cyclic successor used by linear probing.
// It is a passive container — it holds no lock of its own; synchronization
// is entirely the engine's responsibility (spec.md §4.3).
//
// © 2025 hashtable-engine authors. MIT License.
package table

import "github.com/Voskan/hashtable-engine/internal/bucket"

// Table is an array of capacity buckets, all Empty when newly allocated.
type Table struct {
	buckets []bucket.Bucket
}

// New allocates a table with exactly capacity buckets, all Empty.
func New(capacity int) *Table {
	return &Table{buckets: make([]bucket.Bucket, capacity)}
}

// Capacity returns the number of buckets in the table.
func (t *Table) Capacity() int { return len(t.buckets) }

// At returns a pointer to the bucket at index i, so callers can mutate it in
// place. i must be in [0, Capacity()).
func (t *Table) At(i int) *bucket.Bucket { return &t.buckets[i] }

// Next returns the cyclic successor of i: (i+1) mod capacity.
func (t *Table) Next(i int) int {
	i++
	if i == len(t.buckets) {
		return 0
	}
	return i
}

// IndexOf computes the starting probe index for hash under this table's
// capacity: hash mod capacity.
func (t *Table) IndexOf(hash uint64) int {
	return int(hash % uint64(len(t.buckets)))
}
