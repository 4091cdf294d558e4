// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxa implements a registry
// that assigns a stable index to every taxon
// found across a set of trees.
//
// As the bit vectors of all bipartitions
// are defined over the registry indices,
// the registry must be frozen
// before any bipartition is encoded.
package taxa

import "slices"

// A Registry stores the taxa found across a set of trees,
// each one with a stable index,
// assigned in order of first appearance.
type Registry struct {
	ids    map[string]int
	names  []string
	frozen bool
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids: make(map[string]int),
	}
}

// Resolve returns the index of a taxon,
// given its raw identifier in a tree file.
// If a translation table is given,
// the identifier will be first translated to its label;
// identifiers without a translation are used as is.
// Unknown taxa are added to the registry,
// taking the next free index.
//
// Resolving a new taxon on a frozen registry
// is a programming error and panics.
func (r *Registry) Resolve(raw string, translate map[string]string) int {
	name := raw
	if translate != nil {
		if v, ok := translate[raw]; ok {
			name = v
		}
	}

	if id, ok := r.ids[name]; ok {
		return id
	}
	if r.frozen {
		panic("taxa: registry modified after freeze: " + name)
	}

	id := len(r.names)
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// Name returns the taxon label at the given index.
func (r *Registry) Name(id int) string {
	return r.names[id]
}

// Len returns the number of taxa in the registry.
func (r *Registry) Len() int {
	return len(r.names)
}

// Taxa returns the taxon labels in index order.
func (r *Registry) Taxa() []string {
	return slices.Clone(r.names)
}

// Freeze makes the registry read-only.
// After a freeze the taxon universe is fixed
// and bipartitions can be encoded.
func (r *Registry) Freeze() {
	r.frozen = true
}

// IsFrozen returns true if the registry is read-only.
func (r *Registry) IsFrozen() bool {
	return r.frozen
}
