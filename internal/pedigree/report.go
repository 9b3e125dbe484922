package pedigree

import (
	"time"

	"pedigreecore/pkg/domain"
)

// Chart is a pedigree chart: the walked tree, its positional matrix, both
// completeness measures and the repeated-ancestor highlights.
type Chart struct {
	Generations       int                `json:"generations"`
	Tree              *AncestorNode      `json:"tree"`
	Matrix            AncestorMatrix     `json:"matrix"`
	Completeness      Completeness       `json:"completeness"`
	Coverage          Completeness       `json:"coverage"`
	RepeatedAncestors []RepeatedAncestor `json:"repeated_ancestors"`
}

// BuildChart walks rootID to maxGeneration and derives everything else from
// that one tree.
func BuildChart(finder domain.IndividualFinder, rootID string, maxGeneration int) (Chart, error) {
	if err := ValidateGenerations(maxGeneration, MaxGenerations); err != nil {
		return Chart{}, err
	}
	tree := Walk(finder, rootID, 0, maxGeneration)
	matrix, err := Project(tree, maxGeneration)
	if err != nil {
		return Chart{}, err
	}
	return Chart{
		Generations:       maxGeneration,
		Tree:              tree,
		Matrix:            matrix,
		Completeness:      Score(tree, maxGeneration),
		Coverage:          Coverage(tree, matrix),
		RepeatedAncestors: RepeatedAncestors(tree),
	}, nil
}

// Report bundles every analysis for one individual.
type Report struct {
	Individual  domain.Individual `json:"individual"`
	Pedigree    Chart             `json:"pedigree"`
	Inbreeding  COIResult         `json:"inbreeding"`
	Health      HealthSummary     `json:"health"`
	Age         *AgeSpan          `json:"age,omitempty"`
	Siblings    []Relative        `json:"siblings"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ReportOptions sets the two generation depths used by BuildReport.
type ReportOptions struct {
	Generations    int
	COIGenerations int
	Now            time.Time
}

// BuildReport assembles a Report for ind. population is scanned for full
// siblings and should be the same snapshot finder reads from.
func BuildReport(finder domain.IndividualFinder, population []domain.Individual, ind domain.Individual, opts ReportOptions) (Report, error) {
	chart, err := BuildChart(finder, ind.ID, opts.Generations)
	if err != nil {
		return Report{}, err
	}
	coi, err := ComputeCOI(finder, ind, opts.COIGenerations)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Individual:  ind,
		Pedigree:    chart,
		Inbreeding:  coi,
		Health:      SummarizeHealth(ind.HealthTests),
		Age:         Age(ind.DateOfBirth, opts.Now),
		Siblings:    FindRelatives(ind, population, RelationSiblings),
		GeneratedAt: opts.Now.UTC(),
	}, nil
}
