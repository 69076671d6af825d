// Package unsafehelpers centralizes every unavoidable use of the `unsafe`
// standard-library package so the rest of hashtable-engine stays clean and
// easy to audit. Every helper documents its pre/post-conditions.
//
// These helpers deliberately step outside the Go memory-safety model for the
// sake of zero-allocation conversions and fast arithmetic. They are not part
// of the public API and may change without notice. Misuse leads to subtle
// data races or memory corruption — use only inside this module.
//
// © 2025 hashtable-engine authors. MIT License.
package unsafehelpers

import "unsafe"

/* -------------------------------------------------------------------------
   1. Zero-copy string/[]byte conversions
   ------------------------------------------------------------------------- */

// BytesToString converts b to a string without allocating. The caller must
// guarantee b is never mutated for the lifetime of the returned string.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// StringToBytes reinterprets s as a []byte without allocating. The returned
// slice MUST be treated as read-only: writing through it mutates Go's
// immutable string storage and will crash in future Go versions.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

/* -------------------------------------------------------------------------
   2. Generic pointer -> slice helpers
   ------------------------------------------------------------------------- */

// PtrSlice converts an arbitrary *T pointer plus element count into a []T
// without copying.
func PtrSlice[T any](ptr *T, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}

// ByteSliceFrom returns a []byte view of raw memory starting at ptr with the
// given length. Caller must ensure the memory block is at least length
// bytes. Primarily useful when only a pointer and size are known at
// runtime.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), length)
}

/* -------------------------------------------------------------------------
   3. Alignment helpers
   ------------------------------------------------------------------------- */

// AlignUp rounds x up to the nearest multiple of align (which must be a
// power of two). Fast bit-twiddling alternative to math.Ceil for sizes.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}
