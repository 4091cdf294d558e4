// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package bitset implements a compact bit vector
// used to store the taxa on one side of a tree bipartition.
//
// Bits are packed in 64-bit words,
// so a set over a universe of n taxa
// requires n/64 words.
package bitset

import "math/bits"

// Words returns the number of 64-bit words
// required to store a set over a universe of n elements.
func Words(n int) int {
	return (n + 63) / 64
}

// A Bits value is a fixed-width bit vector.
// Bit i is set if element i belongs to the set.
type Bits struct {
	w []uint64
}

// New creates a new empty bit vector
// over a universe of n elements.
func New(n int) Bits {
	return Bits{w: make([]uint64, Words(n))}
}

// Set sets the bit at the given position.
func (b Bits) Set(pos int) {
	b.w[pos>>6] |= 1 << (pos & 63)
}

// IsSet returns true if the bit at the given position is set.
func (b Bits) IsSet(pos int) bool {
	return b.w[pos>>6]&(1<<(pos&63)) != 0
}

// Union adds all elements of x to the receiver.
// Both vectors must be over the same universe.
func (b Bits) Union(x Bits) {
	for i, v := range x.w {
		b.w[i] |= v
	}
}

// Count returns the number of elements in the set.
func (b Bits) Count() int {
	c := 0
	for _, v := range b.w {
		c += bits.OnesCount64(v)
	}
	return c
}

// Complement returns the complement of the set
// within a universe of n elements.
func (b Bits) Complement(n int) Bits {
	c := New(n)
	for i, v := range b.w {
		c.w[i] = ^v
	}
	// clear bits outside the universe
	if r := n & 63; r != 0 {
		c.w[len(c.w)-1] &= (1 << r) - 1
	}
	return c
}

// Clone returns an independent copy of the set.
func (b Bits) Clone() Bits {
	w := make([]uint64, len(b.w))
	copy(w, b.w)
	return Bits{w: w}
}

// Equal returns true if both sets have the same elements.
func (b Bits) Equal(x Bits) bool {
	return b.Compare(x) == 0
}

// Compare returns -1, 0, or +1
// comparing two sets in ascending word order
// (i.e., the set with the smallest indexed elements sorts first).
// It defines the canonical ordering
// used to store and match bipartitions.
func (b Bits) Compare(x Bits) int {
	for i, v := range b.w {
		if v < x.w[i] {
			return -1
		}
		if v > x.w[i] {
			return 1
		}
	}
	return 0
}

// Elements returns the positions of the set bits
// in ascending order.
func (b Bits) Elements() []int {
	var e []int
	for i, v := range b.w {
		for v != 0 {
			p := bits.TrailingZeros64(v)
			e = append(e, i*64+p)
			v &^= 1 << p
		}
	}
	return e
}
