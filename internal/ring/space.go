// Package ring implements the Chord identifier space: hashing, circular
// between-ness, and the per-node routing state (finger table, predecessor,
// successor) that the overlay is built from.
package ring

import (
	"crypto/sha1"
	"fmt"
)

// Space parameterizes the identifier ring by its bit width M. The ring has
// R = 2^M identifiers, [0, R).
type Space struct {
	Bits int
	R    uint64
}

// NewSpace builds a Space for the given bit width. bits must be in (0, 64)
// so that R = 2^bits fits in a uint64 without wraparound.
func NewSpace(bits int) (Space, error) {
	if bits <= 0 || bits >= 64 {
		return Space{}, fmt.Errorf("ring: invalid bit width %d, must be in (0,64)", bits)
	}
	return Space{Bits: bits, R: uint64(1) << uint(bits)}, nil
}

// ID is an identifier in [0, R) for some Space. It carries no reference to
// its Space; callers must not mix ids from different spaces.
type ID uint64

// Hash derives the identifier for an arbitrary byte string: the full
// 20-byte SHA-1 digest read as a big-endian integer, reduced mod R. Since
// R = 2^M divides 2^64, that value equals the last 8 bytes read as a
// uint64 and reduced mod R, so no math/big is needed. Every caller (nodes
// and clients alike) hashes through this one function.
func (s Space) Hash(b []byte) ID {
	sum := sha1.Sum(b)
	var v uint64
	for i := 12; i < 20; i++ {
		v = (v << 8) | uint64(sum[i])
	}
	return ID(v % s.R)
}

// HashString is a convenience wrapper over Hash for string inputs (node
// addresses, filenames).
func (s Space) HashString(str string) ID {
	return s.Hash([]byte(str))
}

// Mod reduces an arbitrary uint64 into the ring.
func (s Space) Mod(v uint64) ID {
	return ID(v % s.R)
}

// Add returns (id + delta) mod R.
func (s Space) Add(id ID, delta uint64) ID {
	return s.Mod(uint64(id) + delta)
}

// FingerStart returns start_i = (id + 2^(i-1)) mod R for 1-indexed i.
func (s Space) FingerStart(id ID, i int) ID {
	return s.Add(id, uint64(1)<<uint(i-1))
}

// InOpen reports whether k lies strictly between a and b walking clockwise
// from a (excluding a), i.e. one reaches k strictly before b. a == b is
// treated as "everyone but a,b qualifies" per spec.md §3.
func InOpen(a, k, b ID) bool {
	if a == b {
		return k != a
	}
	if a < b {
		return a < k && k < b
	}
	return k > a || k < b
}

// InHalfOpen is InOpen with equality accepted at b: (a, b].
func InHalfOpen(a, k, b ID) bool {
	return k == b || InOpen(a, k, b)
}
