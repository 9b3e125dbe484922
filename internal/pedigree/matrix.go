package pedigree

import (
	"encoding/json"
	"fmt"
)

// AncestorMatrix gives O(1) access to the ancestor at (generation, position).
// Generation g in 1..Generations() holds exactly 2^g slots. Position p is
// reached from the root by reading p's bits most-significant first, 0 taking
// the sire branch and 1 the dam branch, so position 0 is the direct paternal
// line and 2^g-1 the direct maternal line.
type AncestorMatrix struct {
	rows [][]*AncestorNode
}

// Project flattens root into a matrix covering generations 1..maxGeneration.
// A nil root produces a matrix whose slots are all nil.
func Project(root *AncestorNode, maxGeneration int) (AncestorMatrix, error) {
	if err := ValidateGenerations(maxGeneration, MaxGenerations); err != nil {
		return AncestorMatrix{}, err
	}
	rows := make([][]*AncestorNode, maxGeneration)
	for g := 1; g <= maxGeneration; g++ {
		row := make([]*AncestorNode, 1<<g)
		for p := range row {
			row[p] = navigate(root, g, p)
		}
		rows[g-1] = row
	}
	return AncestorMatrix{rows: rows}, nil
}

// navigate follows position p across g levels; the branch bit at level l is
// (p >> (g-1-l)) & 1.
func navigate(root *AncestorNode, g, p int) *AncestorNode {
	node := root
	for level := 0; level < g && node != nil; level++ {
		node = node.parent((p >> (g - 1 - level)) & 1)
	}
	return node
}

// Generations reports how many generations the matrix covers.
func (m AncestorMatrix) Generations() int { return len(m.rows) }

// At returns the ancestor at generation g, position p, or nil when the slot
// is empty or out of range.
func (m AncestorMatrix) At(g, p int) *AncestorNode {
	if g < 1 || g > len(m.rows) {
		return nil
	}
	row := m.rows[g-1]
	if p < 0 || p >= len(row) {
		return nil
	}
	return row[p]
}

// Row returns a copy of generation g's slots.
func (m AncestorMatrix) Row(g int) []*AncestorNode {
	if g < 1 || g > len(m.rows) {
		return nil
	}
	out := make([]*AncestorNode, len(m.rows[g-1]))
	copy(out, m.rows[g-1])
	return out
}

// Known counts the populated slots in generation g.
func (m AncestorMatrix) Known(g int) int {
	n := 0
	for _, node := range m.Row(g) {
		if node != nil {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the matrix as {"<generation>": [summary|null, ...]}.
// Slots carry summaries only; the tree itself holds the parent links.
func (m AncestorMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[int][]*Summary, len(m.rows))
	for i, row := range m.rows {
		slots := make([]*Summary, len(row))
		for p, node := range row {
			if node != nil {
				s := node.Summary
				slots[p] = &s
			}
		}
		out[i+1] = slots
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a matrix written by MarshalJSON. Restored slots have
// no parent links.
func (m *AncestorMatrix) UnmarshalJSON(data []byte) error {
	var raw map[int][]*Summary
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rows := make([][]*AncestorNode, len(raw))
	for g, slots := range raw {
		if g < 1 || g > len(raw) {
			return fmt.Errorf("pedigree: matrix generation %d out of range", g)
		}
		if len(slots) != 1<<g {
			return fmt.Errorf("pedigree: matrix generation %d has %d slots, want %d", g, len(slots), 1<<g)
		}
		row := make([]*AncestorNode, len(slots))
		for p, s := range slots {
			if s != nil {
				row[p] = &AncestorNode{Summary: *s}
			}
		}
		rows[g-1] = row
	}
	m.rows = rows
	return nil
}
