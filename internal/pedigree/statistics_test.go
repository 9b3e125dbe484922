package pedigree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pedigreecore/pkg/domain"
)

func TestComputeStatistics(t *testing.T) {
	g := graph{}.
		add("sire", "", "").sex("sire", domain.SexMale).
		add("dam", "", "").sex("dam", domain.SexFemale).
		add("pup1", "sire", "dam").sex("pup1", domain.SexFemale).
		add("pup2", "sire", "ghost").sex("pup2", domain.SexMale).
		add("pup3", "", "pup1").sex("pup3", domain.SexMale)
	pop := []domain.Individual{g["sire"], g["dam"], g["pup1"], g["pup2"], g["pup3"]}

	got := ComputeStatistics(pop)
	assert.Equal(t, BreedingStatistics{
		Total:                      5,
		Males:                      3,
		Females:                    2,
		CompletePedigree:           2,
		CompletePedigreePercentage: 40.0,
		UsedAsSire:                 1,
		UsedAsDam:                  2,
		TotalBreeding:              3,
	}, got)
}

func TestComputeStatisticsRoundsToOneDecimal(t *testing.T) {
	g := graph{}.add("a", "x", "y").add("b", "", "").add("c", "", "")
	got := ComputeStatistics([]domain.Individual{g["a"], g["b"], g["c"]})
	assert.Equal(t, 33.3, got.CompletePedigreePercentage)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	assert.Equal(t, BreedingStatistics{}, ComputeStatistics(nil))
}
