package hashengine

// errors.go defines the typed error taxonomy from spec.md §7. Every engine
// call returns one of these sentinels (possibly wrapped with additional
// context via fmt.Errorf("%w: ...")), never a panic, and never a bespoke
// unwrapped error string that callers would have to string-match.
//
// © 2025 hashtable-engine authors. MIT License.

import "errors"

var (
	// ErrInvalidArgument is returned for a nil key/value, a zero-length
	// key/value, or a non-positive capacity.
	ErrInvalidArgument = errors.New("hashengine: invalid argument")

	// ErrOutOfMemory is returned when an allocation fails during Init or a
	// resize. The engine remains usable at its pre-resize state.
	ErrOutOfMemory = errors.New("hashengine: out of memory")

	// ErrNoSpace is returned only when the table is already at MaxCapacity
	// and the probe chain is saturated.
	ErrNoSpace = errors.New("hashengine: no space at max capacity")

	// ErrNotFound is returned by Get/Delete when the key is absent. It is
	// not an exceptional condition.
	ErrNotFound = errors.New("hashengine: key not found")
)
