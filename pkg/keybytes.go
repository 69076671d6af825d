package hashengine

// keybytes.go offers convenience constructors for callers who hold string
// data rather than []byte. The engine always deep-copies key/value bytes
// into its own memory (spec.md §9 "Borrow-vs-copy"), so handing it a
// zero-copy view of a string's backing array is safe: the engine never
// retains the slice past the call that copies it, and the caller's string
// is immutable anyway.
//
// © 2025 hashtable-engine authors. MIT License.

import "github.com/Voskan/hashtable-engine/internal/unsafehelpers"

// KeyFromString returns a zero-copy []byte view of s, suitable for passing
// directly to Put/Get/Delete. Do not retain or mutate the result: it is a
// view into s's immutable backing array, valid only as long as s is.
func KeyFromString(s string) []byte {
	return unsafehelpers.StringToBytes(s)
}

// ValueFromString is KeyFromString's counterpart for value bytes.
func ValueFromString(s string) []byte {
	return unsafehelpers.StringToBytes(s)
}
