package pedigree

import "pedigreecore/pkg/domain"

// PathMultiset maps each ancestor reached from a starting individual to the
// generation distances at which it was reached. The start itself is recorded
// at distance 0. Ancestors keep first-visit order; lengths keep visit order.
type PathMultiset struct {
	order   []string
	lengths map[string][]int
}

// CollectPaths explores depth-first from startID, sire subtree before dam
// subtree, recording every individual within maxGeneration generations
// (inclusive). An empty or unknown startID yields an empty multiset.
func CollectPaths(finder domain.IndividualFinder, startID string, maxGeneration int) PathMultiset {
	m := PathMultiset{lengths: make(map[string][]int)}
	m.visit(finder, startID, 0, maxGeneration)
	return m
}

func (m *PathMultiset) visit(finder domain.IndividualFinder, id string, generation, maxGeneration int) {
	if id == "" || generation > maxGeneration {
		return
	}
	ind, ok := finder.FindIndividual(id)
	if !ok {
		return
	}
	m.add(id, generation)
	if generation >= maxGeneration {
		return
	}
	if ind.SireID != nil {
		m.visit(finder, *ind.SireID, generation+1, maxGeneration)
	}
	if ind.DamID != nil {
		m.visit(finder, *ind.DamID, generation+1, maxGeneration)
	}
}

func (m *PathMultiset) add(id string, generation int) {
	if _, seen := m.lengths[id]; !seen {
		m.order = append(m.order, id)
	}
	m.lengths[id] = append(m.lengths[id], generation)
}

// IDs returns the distinct ancestors in first-visit order.
func (m PathMultiset) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Lengths returns the recorded distances for id, or nil.
func (m PathMultiset) Lengths(id string) []int {
	l := m.lengths[id]
	if l == nil {
		return nil
	}
	out := make([]int, len(l))
	copy(out, l)
	return out
}

// Contains reports whether id was reached.
func (m PathMultiset) Contains(id string) bool {
	_, ok := m.lengths[id]
	return ok
}

// Len is the number of distinct ancestors.
func (m PathMultiset) Len() int { return len(m.order) }

// Entries is the total number of recorded paths across all ancestors.
func (m PathMultiset) Entries() int {
	n := 0
	for _, l := range m.lengths {
		n += len(l)
	}
	return n
}
