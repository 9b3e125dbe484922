package pedigree

import "pedigreecore/pkg/domain"

// BreedingStatistics summarises a population.
type BreedingStatistics struct {
	Total                      int     `json:"total_individuals"`
	Males                      int     `json:"males"`
	Females                    int     `json:"females"`
	CompletePedigree           int     `json:"complete_pedigree"`
	CompletePedigreePercentage float64 `json:"complete_pedigree_percentage"`
	UsedAsSire                 int     `json:"used_as_sire"`
	UsedAsDam                  int     `json:"used_as_dam"`
	TotalBreeding              int     `json:"total_breeding_individuals"`
}

// ComputeStatistics counts sexes, complete pedigrees (both parents known) and
// the distinct individuals of the population referenced as a sire or dam.
// The complete-pedigree percentage is rounded to one decimal.
func ComputeStatistics(population []domain.Individual) BreedingStatistics {
	var stats BreedingStatistics
	sires := make(map[string]struct{})
	dams := make(map[string]struct{})
	for _, ind := range population {
		stats.Total++
		switch ind.Sex {
		case domain.SexMale:
			stats.Males++
		case domain.SexFemale:
			stats.Females++
		}
		if ind.HasBothParents() {
			stats.CompletePedigree++
		}
		if ind.SireID != nil {
			sires[*ind.SireID] = struct{}{}
		}
		if ind.DamID != nil {
			dams[*ind.DamID] = struct{}{}
		}
	}
	for _, ind := range population {
		if _, ok := sires[ind.ID]; ok {
			stats.UsedAsSire++
		}
		if _, ok := dams[ind.ID]; ok {
			stats.UsedAsDam++
		}
	}
	stats.TotalBreeding = stats.UsedAsSire + stats.UsedAsDam
	if stats.Total > 0 {
		stats.CompletePedigreePercentage = round(float64(stats.CompletePedigree)/float64(stats.Total)*100, 1)
	}
	return stats
}
