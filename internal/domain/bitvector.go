package domain

import (
	"fmt"
	"strings"

	"github.com/willf/bitset"
)

// BitVector represents a subset of a Set's domain as a fixed-length bit
// vector, one bit per domain position. It wraps willf/bitset as a
// size-stamped, immutable-by-convention value: every dataflow operation
// (meet, transfer) produces a fresh copy rather than mutating in place, so
// per-instruction states can be compared against their previous round
// without defensive copying at the call sites.
type BitVector struct {
	bits *bitset.BitSet
	size uint
}

// NewBitVector returns the all-zero vector of the given length (the IC —
// initial condition — of Liveness, and the BC of both analyses).
func NewBitVector(size int) *BitVector {
	return &BitVector{bits: bitset.New(uint(size)), size: uint(size)}
}

// NewFullBitVector returns the all-one vector of the given length (used as
// the initial condition of Available Expressions, where the universal set
// is "no information", i.e. every expression tentatively available).
func NewFullBitVector(size int) *BitVector {
	bv := bitset.New(uint(size)).Complement()
	return &BitVector{bits: bv, size: uint(size)}
}

// Len returns the vector's length.
func (v *BitVector) Len() int { return int(v.size) }

// Test reports whether bit i is set.
func (v *BitVector) Test(i int) bool { return v.bits.Test(uint(i)) }

// Set returns a copy of v with bit i set.
func (v *BitVector) Set(i int) *BitVector {
	return &BitVector{bits: v.bits.Clone().Set(uint(i)), size: v.size}
}

// Clear returns a copy of v with bit i cleared.
func (v *BitVector) Clear(i int) *BitVector {
	return &BitVector{bits: v.bits.Clone().Clear(uint(i)), size: v.size}
}

// Union returns the bitwise OR of v and other.
func (v *BitVector) Union(other *BitVector) *BitVector {
	return &BitVector{bits: v.bits.Union(other.bits), size: v.size}
}

// Intersect returns the bitwise AND of v and other.
func (v *BitVector) Intersect(other *BitVector) *BitVector {
	return &BitVector{bits: v.bits.Intersection(other.bits), size: v.size}
}

// Equal reports whether v and other have identical bits.
func (v *BitVector) Equal(other *BitVector) bool {
	if other == nil {
		return false
	}
	return v.bits.Equal(other.bits)
}

// Clone returns an independent copy of v.
func (v *BitVector) Clone() *BitVector {
	return &BitVector{bits: v.bits.Clone(), size: v.size}
}

// String renders the set bits of v as {0,2,5}, by bit position. The
// analyses' trace output (dataflow.Pass) does not use it; it prints the
// domain elements themselves.
func (v *BitVector) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i := uint(0); i < v.size; i++ {
		if v.bits.Test(i) {
			if !first {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", i)
			first = false
		}
	}
	b.WriteByte('}')
	return b.String()
}
