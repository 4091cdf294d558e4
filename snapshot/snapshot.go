// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package snapshot implements an immutable encoding
// of the bipartitions of a phylogenetic tree.
//
// Each internal branch of a tree splits its taxa
// into two sets
// (a bipartition).
// A snapshot stores one side of each bipartition
// as a bit vector over the taxon registry,
// with the length of the branch that induces it.
// As the stored side is always the side
// without the taxon at index 0,
// two trees share a bipartition
// if, and only if,
// their snapshots store equal bit vectors.
package snapshot

import (
	"sort"

	"github.com/js-arias/timetree"
	"github.com/js-arias/treedist/bitset"
	"github.com/js-arias/treedist/taxa"
)

// Unit used for branch lengths
// taken from time calibrated trees.
const millionYears = 1_000_000

// A Tree is a parsed phylogenetic tree.
// Nodes are identified by IDs,
// terminal nodes have a taxon identifier,
// and any non-root node has the length
// of the branch that connects it with its parent.
type Tree interface {
	// Name returns the name of the tree.
	Name() string

	// State returns the posterior state of the tree sample.
	State() int64

	// Root returns the ID of the root node.
	Root() int

	// Children returns the IDs of the children of a node.
	Children(id int) []int

	// IsTerm returns true if a node is a terminal.
	IsTerm(id int) bool

	// Taxon returns the taxon identifier of a terminal node.
	Taxon(id int) string

	// Length returns the length of the branch
	// between a node and its parent.
	Length(id int) float64
}

// A Split is one side of a bipartition,
// stored in its canonical orientation
// (the side without the taxon at index 0),
// with the length of the branch that induces it.
type Split struct {
	Taxa   bitset.Bits
	Length float64
}

// A Snapshot is the immutable bipartition encoding
// of a single tree.
type Snapshot struct {
	name     string
	state    int64
	universe int
	leaves   bitset.Bits
	numTaxa  int
	splits   []Split
}

// Register adds the taxa of a tree to a registry,
// using the given translation table,
// if any.
// All trees must be registered,
// and the registry frozen,
// before any snapshot is built.
func Register(reg *taxa.Registry, t Tree, translate map[string]string) {
	var walk func(id int)
	walk = func(id int) {
		if t.IsTerm(id) {
			reg.Resolve(t.Taxon(id), translate)
			return
		}
		for _, c := range t.Children(id) {
			walk(c)
		}
	}
	walk(t.Root())
}

// New creates a snapshot from a tree,
// encoding its bipartitions
// over a frozen taxon registry.
//
// Trivial bipartitions
// (with less than two taxa on either side)
// are not stored,
// so trees with less than four taxa
// produce empty snapshots.
// In a tree with a bifurcating root
// the two root branches induce the same bipartition;
// it is stored once,
// with the sum of both branch lengths.
func New(reg *taxa.Registry, t Tree, translate map[string]string) *Snapshot {
	if !reg.IsFrozen() {
		panic("snapshot: taxon registry must be frozen")
	}
	n := reg.Len()

	s := &Snapshot{
		name:     t.Name(),
		state:    t.State(),
		universe: n,
	}

	root := t.Root()
	var walk func(id int) bitset.Bits
	walk = func(id int) bitset.Bits {
		b := bitset.New(n)
		if t.IsTerm(id) {
			b.Set(reg.Resolve(t.Taxon(id), translate))
			return b
		}
		for _, c := range t.Children(id) {
			b.Union(walk(c))
		}
		if id != root {
			s.addSplit(b, t.Length(id), n)
		}
		return b
	}
	s.leaves = walk(root)
	s.numTaxa = s.leaves.Count()

	return s
}

// AddSplit stores the canonical form of a bipartition.
func (s *Snapshot) addSplit(b bitset.Bits, length float64, n int) {
	cnt := b.Count()
	if cnt < 2 || cnt > n-2 {
		// trivial
		return
	}

	b = b.Clone()
	if b.IsSet(0) {
		b = b.Complement(n)
	}

	i := sort.Search(len(s.splits), func(i int) bool {
		return s.splits[i].Taxa.Compare(b) >= 0
	})
	if i < len(s.splits) && s.splits[i].Taxa.Equal(b) {
		// both sides of the root branch
		s.splits[i].Length += length
		return
	}
	s.splits = append(s.splits, Split{})
	copy(s.splits[i+1:], s.splits[i:])
	s.splits[i] = Split{Taxa: b, Length: length}
}

// Timed adapts a time calibrated tree,
// using the age difference between a node and its parent,
// in million years,
// as the branch length.
// Time calibrated trees have no posterior state
// (State always returns 0).
func Timed(t *timetree.Tree) Tree {
	return timedTree{t}
}

// A timedTree adapts a time calibrated tree
// to the Tree interface.
type timedTree struct {
	t *timetree.Tree
}

func (t timedTree) Name() string          { return t.t.Name() }
func (t timedTree) State() int64          { return 0 }
func (t timedTree) Root() int             { return t.t.Root() }
func (t timedTree) Children(id int) []int { return t.t.Children(id) }
func (t timedTree) IsTerm(id int) bool    { return t.t.IsTerm(id) }
func (t timedTree) Taxon(id int) string   { return t.t.Taxon(id) }
func (t timedTree) Length(id int) float64 {
	if t.t.IsRoot(id) {
		return 0
	}
	a := t.t.Age(t.t.Parent(id)) - t.t.Age(id)
	return float64(a) / millionYears
}

// Name returns the name of the source tree.
func (s *Snapshot) Name() string {
	return s.name
}

// State returns the posterior state of the source tree.
func (s *Snapshot) State() int64 {
	return s.state
}

// NumTaxa returns the number of taxa in the source tree.
func (s *Snapshot) NumTaxa() int {
	return s.numTaxa
}

// Universe returns the size of the taxon registry
// used to encode the snapshot.
func (s *Snapshot) Universe() int {
	return s.universe
}

// Full returns true if the source tree
// contains every taxon of the registry.
// Only snapshots over the same full universe
// are comparable.
func (s *Snapshot) Full() bool {
	return s.numTaxa == s.universe
}

// Splits returns the bipartitions of the snapshot,
// sorted in the canonical bit vector order.
// The returned slice is owned by the snapshot
// and must not be modified.
func (s *Snapshot) Splits() []Split {
	return s.splits
}
