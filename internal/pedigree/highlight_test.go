package pedigree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatedAncestorsGroupsOccurrences(t *testing.T) {
	g := graph{}.
		add("pup", "brother", "sister").
		add("brother", "gs", "gd").
		add("sister", "gs", "gd").
		add("gs", "", "").
		add("gd", "", "")
	tree := Walk(g, "pup", 0, 4)

	got := RepeatedAncestors(tree)
	require.Len(t, got, 2)
	assert.Equal(t, "gs", got[0].AncestorID)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, HighlightPalette[0], got[0].Color)
	assert.Equal(t, 1, got[0].ColorIndex)
	assert.Equal(t, []Occurrence{{Generation: 2, Path: "sire.sire"}, {Generation: 2, Path: "dam.sire"}}, got[0].Occurrences)
	assert.Equal(t, "gd", got[1].AncestorID)
	assert.Equal(t, HighlightPalette[1], got[1].Color)
	assert.Equal(t, 2, got[1].ColorIndex)
}

func TestRepeatedAncestorsPaletteCycles(t *testing.T) {
	g := graph{}.add("pup", "s", "d")
	// Six ancestors shared by both parents exhaust the five-colour palette.
	shared := []string{"a", "b", "c", "e", "f", "h"}
	g.add("s", "a", "b").add("d", "a", "b")
	g.add("a", "c", "e").add("b", "f", "h")
	for _, id := range shared[2:] {
		g.add(id, "", "")
	}
	tree := Walk(g, "pup", 0, 4)
	got := RepeatedAncestors(tree)
	require.Len(t, got, 6)
	assert.Equal(t, HighlightPalette[0], got[5].Color)
	assert.Equal(t, 6, got[5].ColorIndex)
}

func TestRepeatedAncestorsIncludesDeepestChartedGeneration(t *testing.T) {
	g := graph{}.
		add("pup", "brother", "sister").
		add("brother", "gs", "gd").
		add("sister", "gs", "gd").
		add("gs", "ggs", "").
		add("gd", "", "")
	chart, err := BuildChart(g, "pup", 2)
	require.NoError(t, err)

	require.Len(t, chart.RepeatedAncestors, 2)
	for _, rep := range chart.RepeatedAncestors {
		for _, occ := range rep.Occurrences {
			assert.Equal(t, 2, occ.Generation)
			assert.NotNil(t, chart.Matrix.At(occ.Generation, positionOf(occ.Path)))
		}
	}
}

// positionOf maps a dotted branch path to its matrix slot.
func positionOf(path string) int {
	pos := 0
	for _, step := range strings.Split(path, ".") {
		pos <<= 1
		if step == "dam" {
			pos |= 1
		}
	}
	return pos
}

func TestRepeatedAncestorsNoneFound(t *testing.T) {
	assert.Empty(t, RepeatedAncestors(Walk(threeGenerations(), "root", 0, 3)))
	assert.Empty(t, RepeatedAncestors(nil))
}
