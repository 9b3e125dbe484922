package pedigree

// HighlightPalette is cycled through when marking repeated ancestors.
var HighlightPalette = []string{"#FFE6E6", "#E6F3FF", "#E6FFE6", "#FFF0E6", "#FFFFE6"}

// Occurrence locates one appearance of an ancestor in a tree. Path lists the
// branches taken from the root, e.g. "sire.dam".
type Occurrence struct {
	Generation int    `json:"generation"`
	Path       string `json:"path"`
}

// RepeatedAncestor is an ancestor that appears more than once in a tree.
type RepeatedAncestor struct {
	AncestorID         string       `json:"ancestor_id"`
	Name               string       `json:"name"`
	RegistrationNumber string       `json:"registration_number"`
	Count              int          `json:"count"`
	Color              string       `json:"color"`
	ColorIndex         int          `json:"color_index"`
	Occurrences        []Occurrence `json:"occurrences"`
}

// RepeatedAncestors groups the ancestors of root (generation 1 and deeper)
// by ID and returns those seen more than once, in order of first appearance
// with the sire subtree ahead of the dam subtree. ColorIndex is 1-based.
func RepeatedAncestors(root *AncestorNode) []RepeatedAncestor {
	if root == nil {
		return []RepeatedAncestor{}
	}
	var (
		order  []string
		seen   = make(map[string][]Occurrence)
		byID   = make(map[string]Summary)
		record func(n *AncestorNode, path string)
	)
	record = func(n *AncestorNode, path string) {
		if n == nil {
			return
		}
		if _, ok := seen[n.ID]; !ok {
			order = append(order, n.ID)
			byID[n.ID] = n.Summary
		}
		seen[n.ID] = append(seen[n.ID], Occurrence{Generation: n.Generation, Path: path})
		record(n.Sire, path+".sire")
		record(n.Dam, path+".dam")
	}
	record(root.Sire, "sire")
	record(root.Dam, "dam")

	out := []RepeatedAncestor{}
	for _, id := range order {
		occ := seen[id]
		if len(occ) < 2 {
			continue
		}
		idx := len(out)
		out = append(out, RepeatedAncestor{
			AncestorID:         id,
			Name:               byID[id].Name,
			RegistrationNumber: byID[id].RegistrationNumber,
			Count:              len(occ),
			Color:              HighlightPalette[idx%len(HighlightPalette)],
			ColorIndex:         idx + 1,
			Occurrences:        occ,
		})
	}
	return out
}
