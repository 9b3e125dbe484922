package pedigree

import "pedigreecore/pkg/domain"

// graph is an in-memory IndividualFinder for tests.
type graph map[string]domain.Individual

func (g graph) FindIndividual(id string) (domain.Individual, bool) {
	ind, ok := g[id]
	return ind, ok
}

// add registers id with the given parents; "" means unknown.
func (g graph) add(id, sire, dam string) graph {
	g[id] = domain.Individual{
		Base:   domain.Base{ID: id},
		Name:   "Dog " + id,
		Breed:  "Beagle",
		SireID: domain.Ref(sire),
		DamID:  domain.Ref(dam),
	}
	return g
}

func (g graph) sex(id string, sex domain.Sex) graph {
	ind := g[id]
	ind.Sex = sex
	g[id] = ind
	return g
}

// threeGenerations builds a complete pedigree for "root":
//
//	root <- s, d
//	s    <- ss, sd
//	d    <- ds, dd
func threeGenerations() graph {
	return graph{}.
		add("root", "s", "d").
		add("s", "ss", "sd").
		add("d", "ds", "dd").
		add("ss", "", "").
		add("sd", "", "").
		add("ds", "", "").
		add("dd", "", "")
}
