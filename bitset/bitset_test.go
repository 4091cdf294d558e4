// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package bitset_test

import (
	"reflect"
	"testing"

	"github.com/js-arias/treedist/bitset"
)

func TestBits(t *testing.T) {
	b := bitset.New(5)
	b.Set(0)
	b.Set(2)

	if !b.IsSet(0) || !b.IsSet(2) {
		t.Errorf("bits 0 and 2 should be set")
	}
	if b.IsSet(1) {
		t.Errorf("bit 1 should be unset")
	}
	if g := b.Count(); g != 2 {
		t.Errorf("count: got %d, want %d", g, 2)
	}
	if g := b.Elements(); !reflect.DeepEqual(g, []int{0, 2}) {
		t.Errorf("elements: got %v, want %v", g, []int{0, 2})
	}
}

func TestUnion(t *testing.T) {
	b := bitset.New(5)
	b.Set(0)
	b.Set(1)

	x := bitset.New(5)
	x.Set(2)
	x.Set(3)

	b.Union(x)
	if g := b.Elements(); !reflect.DeepEqual(g, []int{0, 1, 2, 3}) {
		t.Errorf("union: got %v, want %v", g, []int{0, 1, 2, 3})
	}
}

func TestComplement(t *testing.T) {
	b := bitset.New(5)
	b.Set(0)
	b.Set(1)

	c := b.Complement(5)
	if g := c.Elements(); !reflect.DeepEqual(g, []int{2, 3, 4}) {
		t.Errorf("complement: got %v, want %v", g, []int{2, 3, 4})
	}
	if g := c.Count(); g != 3 {
		t.Errorf("complement count: got %d, want %d", g, 3)
	}

	// round trip
	if g := c.Complement(5); !g.Equal(b) {
		t.Errorf("double complement: got %v, want %v", g.Elements(), b.Elements())
	}
}

func TestCompare(t *testing.T) {
	a := bitset.New(5)
	a.Set(1)
	a.Set(2)

	b := bitset.New(5)
	b.Set(3)
	b.Set(4)

	if g := a.Compare(b); g != -1 {
		t.Errorf("compare: got %d, want %d", g, -1)
	}
	if g := b.Compare(a); g != 1 {
		t.Errorf("compare: got %d, want %d", g, 1)
	}
	if g := a.Compare(a.Clone()); g != 0 {
		t.Errorf("compare: got %d, want %d", g, 0)
	}
	if !a.Equal(a.Clone()) {
		t.Errorf("clone should be equal to its source")
	}
}

func TestLargeUniverse(t *testing.T) {
	// more than a single word
	b := bitset.New(130)
	for _, p := range []int{0, 63, 64, 127, 129} {
		b.Set(p)
	}
	if g := b.Count(); g != 5 {
		t.Errorf("count: got %d, want %d", g, 5)
	}
	if g := b.Elements(); !reflect.DeepEqual(g, []int{0, 63, 64, 127, 129}) {
		t.Errorf("elements: got %v", g)
	}

	c := b.Complement(130)
	if g := c.Count(); g != 125 {
		t.Errorf("complement count: got %d, want %d", g, 125)
	}
	if c.IsSet(129) || !c.IsSet(128) {
		t.Errorf("complement: bit 129 should be unset and bit 128 set")
	}
}
