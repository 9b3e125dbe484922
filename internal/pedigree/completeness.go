package pedigree

import "math"

// Completeness reports how many ancestor slots are known. Total only counts
// slots whose child was itself present, so a missing ancestor contributes
// nothing for its own unexplored subtree.
type Completeness struct {
	Known      int     `json:"known_count"`
	Total      int     `json:"total_count"`
	Percentage float64 `json:"percentage"`
}

// Score counts known and total slots over generations 0..maxGeneration of
// the tree rooted at root. Percentage is rounded to two decimals and is 0
// when nothing was counted.
func Score(root *AncestorNode, maxGeneration int) Completeness {
	known, total := count(root, 0, maxGeneration)
	c := Completeness{Known: known, Total: total}
	if total > 0 {
		c.Percentage = round(float64(known)/float64(total)*100, 2)
	}
	return c
}

func count(node *AncestorNode, gen, maxGen int) (known, total int) {
	if gen > maxGen || node == nil {
		return 0, 0
	}
	known, total = 1, 1
	if gen < maxGen {
		sk, st := count(node.Sire, gen+1, maxGen)
		dk, dt := count(node.Dam, gen+1, maxGen)
		known += sk + dk
		total += st + dt
	}
	return known, total
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Coverage measures the matrix against every theoretical slot: the root plus
// 2^g positions per generation, so total is 2^(G+1)-1 for a non-nil root.
// Unlike Score, a missing ancestor counts against every slot above it.
func Coverage(root *AncestorNode, m AncestorMatrix) Completeness {
	if root == nil {
		return Completeness{}
	}
	c := Completeness{Known: 1, Total: 1}
	for g := 1; g <= m.Generations(); g++ {
		c.Known += m.Known(g)
		c.Total += 1 << g
	}
	c.Percentage = round(float64(c.Known)/float64(c.Total)*100, 2)
	return c
}
