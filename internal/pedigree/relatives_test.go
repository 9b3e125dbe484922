package pedigree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedigreecore/pkg/domain"
)

func relativesFixture() (graph, []domain.Individual) {
	g := graph{}.
		add("subject", "sire", "dam").
		add("full", "sire", "dam").
		add("paternal-half", "sire", "other-dam").
		add("maternal-half", "other-sire", "dam").
		add("unknown-dam", "sire", "").
		add("pup", "subject", "mate").
		add("stranger", "x", "y").
		add("sire", "", "").sex("sire", domain.SexMale).
		add("dam", "", "").sex("dam", domain.SexFemale)
	g.sex("subject", domain.SexMale)
	order := []string{"sire", "dam", "subject", "full", "paternal-half", "maternal-half", "unknown-dam", "pup", "stranger"}
	pop := make([]domain.Individual, 0, len(order))
	for _, id := range order {
		pop = append(pop, g[id])
	}
	return g, pop
}

func relativeIDs(rel []Relative) []string {
	ids := make([]string, 0, len(rel))
	for _, r := range rel {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestFindRelativesByKind(t *testing.T) {
	g, pop := relativesFixture()
	subject := g["subject"]

	cases := []struct {
		kind RelationKind
		want []string
	}{
		{RelationSiblings, []string{"full"}},
		{RelationHalfSiblings, []string{"full", "paternal-half", "maternal-half"}},
		{RelationOffspring, []string{"pup"}},
		{RelationAll, []string{"full", "paternal-half", "maternal-half", "pup"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, relativeIDs(FindRelatives(subject, pop, tc.kind)))
		})
	}
}

func TestFindRelativesLabelsAndSubjectExcluded(t *testing.T) {
	g, pop := relativesFixture()
	got := FindRelatives(g["subject"], pop, RelationAll)
	require.Len(t, got, 4)
	assert.Equal(t, RelationFullSibling, got[0].Relation)
	assert.Equal(t, RelationHalfSibling, got[1].Relation)
	assert.Equal(t, RelationOffspringTag, got[3].Relation)
	assert.NotContains(t, relativeIDs(got), "subject")
}

func TestFindRelativesOffspringFollowsSex(t *testing.T) {
	g := graph{}.add("dam", "", "").sex("dam", domain.SexFemale).add("pup", "", "dam").add("odd", "dam", "")
	pop := []domain.Individual{g["dam"], g["pup"], g["odd"]}
	assert.Equal(t, []string{"pup"}, relativeIDs(FindRelatives(g["dam"], pop, RelationOffspring)))
}

func TestFindRelativesWithoutParentsHasNoSiblings(t *testing.T) {
	g := graph{}.add("a", "", "").add("b", "", "")
	pop := []domain.Individual{g["a"], g["b"]}
	assert.Empty(t, FindRelatives(g["a"], pop, RelationAll))
}

func TestFindRelativesHalfSiblingsWhenSubjectParentUnknown(t *testing.T) {
	g := graph{}.
		add("subject", "sire", "").
		add("half", "sire", "dam").
		add("no-dam", "sire", "").
		add("other", "other-sire", "dam")
	pop := []domain.Individual{g["subject"], g["half"], g["no-dam"], g["other"]}

	got := FindRelatives(g["subject"], pop, RelationHalfSiblings)
	require.Len(t, got, 1)
	assert.Equal(t, "half", got[0].ID)
	assert.Equal(t, RelationHalfSibling, got[0].Relation)
}

func TestParseRelationKind(t *testing.T) {
	k, err := ParseRelationKind("")
	require.NoError(t, err)
	assert.Equal(t, RelationAll, k)
	k, err = ParseRelationKind("half-siblings")
	require.NoError(t, err)
	assert.Equal(t, RelationHalfSiblings, k)
	_, err = ParseRelationKind("cousins")
	require.Error(t, err)
}
