// Package siphash wraps the SipHash-2-4 implementation used to index the
// bucket table. It hides the real third-party dependency behind a tiny,
// stable surface, the same way internal/arena hid the experimental arena
// package in the codebase this module grew out of: upper layers only ever
// see Keys and Hash, never the underlying library.
//
// © 2025 hashtable-engine authors. MIT License.
package siphash

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"

	dchest "github.com/dchest/siphash"
)

// Keys holds the 128-bit secret key pair (k0, k1) a single engine instance
// uses for every hash it computes. The pair is immutable once drawn and is
// never shared across engine instances (spec.md §4.1 "Key management").
type Keys struct {
	K0, K1 uint64
}

// Hash computes SipHash-2-4 of key under k. Deterministic and pure: equal
// (key, k) always produce the same result, and distinct calls never mutate
// anything. Callers take the result modulo any positive capacity; per
// spec.md §4.1 the high bits are already near-uniform for random keys.
func (k Keys) Hash(key []byte) uint64 {
	return dchest.Hash(k.K0, k.K1, key)
}

// NewKeys draws a fresh (k0, k1) pair from a cryptographically strong random
// source. weak reports true when the strong source was unavailable and the
// pair was drawn from a non-cryptographic fallback instead — callers MUST
// surface this as a warning through their diagnostic channel (spec.md §4.1,
// §7 WeakRandomness), never silently.
func NewKeys() (keys Keys, weak bool) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return Keys{
			K0: binary.LittleEndian.Uint64(buf[0:8]),
			K1: binary.LittleEndian.Uint64(buf[8:16]),
		}, false
	}

	// crypto/rand is unavailable (exotic/embedded environments without a
	// working entropy source). Fall back to a seeded PRNG so the engine can
	// still start; the caller is responsible for logging WeakRandomness.
	src := mathrand.NewPCG(mathrand.Uint64(), mathrand.Uint64())
	r := mathrand.New(src)
	return Keys{K0: r.Uint64(), K1: r.Uint64()}, true
}
