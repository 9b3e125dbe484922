package pedigree

import (
	"math"
	"sort"

	"pedigreecore/pkg/domain"
)

// COIStatus explains how a COI result was reached.
type COIStatus string

const (
	// StatusCalculated means both lines were walked and at least one common ancestor found.
	StatusCalculated COIStatus = "calculated"
	// StatusNoCommonAncestors means both lines were walked and share nobody.
	StatusNoCommonAncestors COIStatus = "no_common_ancestors"
	// StatusIncompletePedigree means the individual lacks a sire or dam reference.
	StatusIncompletePedigree COIStatus = "incomplete_pedigree"
)

// CommonAncestor is one ancestor shared by the paternal and maternal lines.
type CommonAncestor struct {
	AncestorID             string  `json:"ancestor_id"`
	Name                   string  `json:"name"`
	RegistrationNumber     string  `json:"registration_number"`
	Contribution           float64 `json:"contribution"`
	ContributionPercentage float64 `json:"contribution_percentage"`
	PathCombinationCount   int     `json:"path_combination_count"`
	PaternalPathLengths    []int   `json:"paternal_path_lengths"`
	MaternalPathLengths    []int   `json:"maternal_path_lengths"`
}

// COIResult is Wright's coefficient of inbreeding for one individual.
type COIResult struct {
	IndividualID        string           `json:"individual_id"`
	Status              COIStatus        `json:"status"`
	Message             string           `json:"message,omitempty"`
	COIPercentage       float64          `json:"coi_percentage"`
	COIDecimal          float64          `json:"coi_decimal"`
	CommonAncestors     []CommonAncestor `json:"common_ancestors"`
	PathsAnalyzed       int              `json:"paths_analyzed"`
	PaternalPaths       int              `json:"paternal_paths"`
	MaternalPaths       int              `json:"maternal_paths"`
	GenerationsAnalyzed int              `json:"generations_analyzed"`
	Interpretation      Interpretation   `json:"interpretation"`
}

// ComputeCOI calculates the inbreeding coefficient of ind from the ancestors
// shared by its sire's and dam's lines within maxGeneration generations of
// each parent.
//
// Path lengths start at 0 for the parent itself, so a parent that reappears
// on the other side counts at distance 0. Each pair of paths (n1, n2) through
// a common ancestor contributes 0.5^(n1+n2+1); the ancestor's own inbreeding
// is taken as zero and the total is not clamped.
//
// An individual without both parent references gets a zero result with
// StatusIncompletePedigree rather than an error.
func ComputeCOI(finder domain.IndividualFinder, ind domain.Individual, maxGeneration int) (COIResult, error) {
	if err := ValidateGenerations(maxGeneration, MaxGenerations); err != nil {
		return COIResult{}, err
	}
	result := COIResult{
		IndividualID:        ind.ID,
		CommonAncestors:     []CommonAncestor{},
		GenerationsAnalyzed: maxGeneration,
		Interpretation:      Interpret(0),
	}
	if !ind.HasBothParents() {
		result.Status = StatusIncompletePedigree
		result.Message = "Both sire and dam must be known to calculate inbreeding"
		return result, nil
	}

	paternal := CollectPaths(finder, *ind.SireID, maxGeneration)
	maternal := CollectPaths(finder, *ind.DamID, maxGeneration)
	result.PaternalPaths = paternal.Entries()
	result.MaternalPaths = maternal.Entries()
	result.PathsAnalyzed = result.PaternalPaths + result.MaternalPaths

	type ranked struct {
		CommonAncestor
		raw float64
	}
	var (
		total  float64
		common []ranked
	)
	for _, id := range paternal.IDs() {
		if !maternal.Contains(id) {
			continue
		}
		p1, p2 := paternal.Lengths(id), maternal.Lengths(id)
		var contribution float64
		for _, n1 := range p1 {
			for _, n2 := range p2 {
				contribution += math.Ldexp(1, -(n1 + n2 + 1))
			}
		}
		total += contribution
		ca := CommonAncestor{
			AncestorID:             id,
			Contribution:           round(contribution, 6),
			ContributionPercentage: round(contribution*100, 4),
			PathCombinationCount:   len(p1) * len(p2),
			PaternalPathLengths:    p1,
			MaternalPathLengths:    p2,
		}
		if anc, ok := finder.FindIndividual(id); ok {
			ca.Name = anc.Name
			ca.RegistrationNumber = anc.RegistrationNumber
		}
		common = append(common, ranked{CommonAncestor: ca, raw: contribution})
	}

	if len(common) == 0 {
		result.Status = StatusNoCommonAncestors
		result.Message = "No common ancestors found between sire and dam lines"
		return result, nil
	}

	sort.SliceStable(common, func(i, j int) bool { return common[i].raw > common[j].raw })
	for _, c := range common {
		result.CommonAncestors = append(result.CommonAncestors, c.CommonAncestor)
	}
	result.Status = StatusCalculated
	result.COIPercentage = round(total*100, 4)
	result.COIDecimal = round(total, 6)
	result.Interpretation = Interpret(result.COIPercentage)
	return result, nil
}
